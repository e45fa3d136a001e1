package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/watchtower-lab/chanpulse/pkg/cli/config"
	httpctrl "github.com/watchtower-lab/chanpulse/pkg/controller/http"
	"github.com/watchtower-lab/chanpulse/pkg/service/worker"
	"github.com/watchtower-lab/chanpulse/pkg/usecase"
	"github.com/watchtower-lab/chanpulse/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var configPath string
	var memberConcurrency int64
	var refreshInterval time.Duration
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":3000",
			Sources:     cli.EnvVars("CHANPULSE_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to optional TOML configuration file",
			Sources:     cli.EnvVars("CHANPULSE_CONFIG"),
			Destination: &configPath,
		},
		&cli.Int64Flag{
			Name:        "member-concurrency",
			Usage:       "Max parallel user lookups when listing channel members",
			Value:       usecase.DefaultMemberConcurrency,
			Sources:     cli.EnvVars("CHANPULSE_MEMBER_CONCURRENCY"),
			Destination: &memberConcurrency,
		},
		&cli.DurationFlag{
			Name:        "profile-refresh-interval",
			Usage:       "Interval between background full profile syncs (0 disables the worker)",
			Value:       0,
			Sources:     cli.EnvVars("CHANPULSE_PROFILE_REFRESH_INTERVAL"),
			Destination: &refreshInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var channelTypes []string

			// File config supplies defaults; explicitly set flags win
			if configPath != "" {
				appCfg, err := config.LoadAppConfiguration(configPath)
				if err != nil {
					return goerr.Wrap(err, "failed to load configuration file")
				}

				if appCfg.Server.Addr != "" && !c.IsSet("addr") {
					addr = appCfg.Server.Addr
				}
				if appCfg.Limits.MemberConcurrency > 0 && !c.IsSet("member-concurrency") {
					memberConcurrency = appCfg.Limits.MemberConcurrency
				}
				if appCfg.RefreshInterval() > 0 && !c.IsSet("profile-refresh-interval") {
					refreshInterval = appCfg.RefreshInterval()
				}
				channelTypes = appCfg.Slack.ChannelTypes
			}

			// Initialize the profile cache backend
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			slackSvc, err := slackCfg.Configure(channelTypes)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize slack service")
			}

			uc := usecase.New(repo, slackSvc,
				usecase.WithMemberConcurrency(memberConcurrency),
			)

			// Start the background profile refresh worker when enabled
			var refreshWorker *worker.ProfileRefreshWorker
			if refreshInterval > 0 {
				refreshWorker = worker.NewProfileRefreshWorker(repo, slackSvc, refreshInterval)
				if err := refreshWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start profile refresh worker")
				}
			}

			httpOpts := []httpctrl.Options{}
			if slackCfg.IsWebhookVerified() {
				httpOpts = append(httpOpts, httpctrl.WithSigningSecret(slackCfg.SigningSecret()))
				logging.Default().Info("Slack webhook signature verification enabled")
			} else {
				logging.Default().Warn("Slack webhook signature verification disabled (no signing secret configured)")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if refreshWorker != nil {
					refreshWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
