package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/watchtower-lab/chanpulse/pkg/domain/model"
	slacksvc "github.com/watchtower-lab/chanpulse/pkg/service/slack"
	"github.com/watchtower-lab/chanpulse/pkg/usecase"
	"github.com/watchtower-lab/chanpulse/pkg/utils/errutil"
	"github.com/watchtower-lab/chanpulse/pkg/utils/logging"
	"github.com/watchtower-lab/chanpulse/pkg/utils/safe"
)

type errorResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	SlackErrorCode string `json:"slack_error_code,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}

// writeError writes the JSON error envelope. Server errors are logged
// with their goerr context before the response is committed.
func writeError(ctx context.Context, w http.ResponseWriter, status int, err error, slackErrorCode string) {
	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error("request failed",
			"status", status,
			"error", err.Error(),
			"values", ge.Values(),
		)
	} else {
		logger.Error("request failed", "status", status, "error", err.Error())
	}

	errutil.Report(ctx, err, status)

	writeJSON(ctx, w, status, errorResponse{
		Success:        false,
		Error:          err.Error(),
		SlackErrorCode: slackErrorCode,
	})
}

// listMembersHandler serves GET /users/{channelID}
func listMembersHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Success bool             `json:"success"`
		Channel string           `json:"channel"`
		Users   []*model.Profile `json:"users"`
		Total   int              `json:"total"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		channelID := chi.URLParam(r, "channelID")

		users, err := uc.Channel.ListMembers(ctx, channelID)
		if err != nil {
			writeError(ctx, w, http.StatusInternalServerError, err, slacksvc.APIErrorCode(err))
			return
		}

		writeJSON(ctx, w, http.StatusOK, response{
			Success: true,
			Channel: channelID,
			Users:   users,
			Total:   len(users),
		})
	}
}

// historyFilters parses crawl query parameters. The limit defaults to
// 100 when absent or non-numeric; inclusive is true only for the
// literal string "true".
func historyFilters(r *http.Request) model.HistoryFilters {
	q := r.URL.Query()

	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = model.DefaultHistoryLimit
	}

	return model.HistoryFilters{
		Limit:     limit,
		Oldest:    q.Get("oldest"),
		Latest:    q.Get("latest"),
		Inclusive: q.Get("inclusive") == "true",
		Cursor:    q.Get("cursor"),
	}
}

// crawlHandler serves GET /crawl/{channelID}
func crawlHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Success    bool                   `json:"success"`
		Channel    string                 `json:"channel"`
		Messages   []model.HistoryMessage `json:"messages"`
		Total      int                    `json:"total"`
		HasMore    bool                   `json:"has_more"`
		NextCursor *string                `json:"next_cursor"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		channelID := chi.URLParam(r, "channelID")

		page, err := uc.Crawl.Crawl(ctx, channelID, historyFilters(r))
		if err != nil {
			writeError(ctx, w, http.StatusInternalServerError, err, slacksvc.APIErrorCode(err))
			return
		}

		var nextCursor *string
		if page.NextCursor != "" {
			nextCursor = &page.NextCursor
		}

		writeJSON(ctx, w, http.StatusOK, response{
			Success:    true,
			Channel:    channelID,
			Messages:   page.Messages,
			Total:      len(page.Messages),
			HasMore:    page.HasMore,
			NextCursor: nextCursor,
		})
	}
}

// listChannelsHandler serves GET /channels
func listChannelsHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Success  bool            `json:"success"`
		Channels []model.Channel `json:"channels"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		channels, err := uc.Channel.ListChannels(ctx)
		if err != nil {
			writeError(ctx, w, http.StatusInternalServerError, err, slacksvc.APIErrorCode(err))
			return
		}

		writeJSON(ctx, w, http.StatusOK, response{
			Success:  true,
			Channels: channels,
		})
	}
}

// recentMessagesHandler serves GET /messages/{channelID}
func recentMessagesHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Success  bool                   `json:"success"`
		Channel  string                 `json:"channel"`
		Messages []*model.MessageRecord `json:"messages"`
		Total    int                    `json:"total"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		channelID := chi.URLParam(r, "channelID")

		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil {
			limit = 0 // repository default
		}

		records, err := uc.Channel.RecentMessages(ctx, channelID, limit)
		if err != nil {
			writeError(ctx, w, http.StatusInternalServerError, err, "")
			return
		}

		writeJSON(ctx, w, http.StatusOK, response{
			Success:  true,
			Channel:  channelID,
			Messages: records,
			Total:    len(records),
		})
	}
}

// sendMessageHandler serves POST /send/{channelID}
func sendMessageHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		Text string `json:"text"`
	}
	type response struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Channel   string `json:"channel"`
		Timestamp string `json:"timestamp"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		channelID := chi.URLParam(r, "channelID")

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(ctx, w, http.StatusBadRequest, goerr.Wrap(err, "failed to decode request body"), "")
			return
		}

		timestamp, err := uc.Channel.SendMessage(ctx, channelID, req.Text)
		if err != nil {
			if errors.Is(err, usecase.ErrEmptyMessageText) {
				writeError(ctx, w, http.StatusBadRequest, err, "")
				return
			}
			writeError(ctx, w, http.StatusInternalServerError, err, slacksvc.APIErrorCode(err))
			return
		}

		writeJSON(ctx, w, http.StatusOK, response{
			Success:   true,
			Message:   "Message sent successfully",
			Channel:   channelID,
			Timestamp: timestamp,
		})
	}
}
