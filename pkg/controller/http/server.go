package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/watchtower-lab/chanpulse/pkg/usecase"
	"github.com/watchtower-lab/chanpulse/pkg/utils/logging"
)

type Server struct {
	router             *chi.Mux
	uc                 *usecase.UseCases
	slackSigningSecret string
}

type Options func(*Server)

// WithSigningSecret enables Slack request signature verification on the
// webhook endpoint
func WithSigningSecret(secret string) Options {
	return func(s *Server) {
		s.slackSigningSecret = secret
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	// Slack webhook endpoint - no auth beyond signature verification
	r.Route("/slack", func(r chi.Router) {
		if s.slackSigningSecret != "" {
			r.Use(SlackSignatureMiddleware(s.slackSigningSecret))
		}
		r.Post("/events", eventsHandler(uc))
	})

	// REST surface
	r.Get("/users/{channelID}", listMembersHandler(uc))
	r.Get("/crawl/{channelID}", crawlHandler(uc))
	r.Get("/channels", listChannelsHandler(uc))
	r.Get("/messages/{channelID}", recentMessagesHandler(uc))
	r.Post("/send/{channelID}", sendMessageHandler(uc))

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
