package http_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	httpctrl "github.com/watchtower-lab/chanpulse/pkg/controller/http"
	"github.com/watchtower-lab/chanpulse/pkg/repository/memory"
	"github.com/watchtower-lab/chanpulse/pkg/usecase"
)

var VerifySlackSignature = httpctrl.VerifySlackSignature

// computeSlackSignature computes the Slack signature for testing
func computeSlackSignature(signingSecret, timestamp, body string) string {
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	return "v0=" + hex.EncodeToString(h.Sum(nil))
}

// Test core signature verification function
func TestVerifySlackSignature(t *testing.T) {
	signingSecret := "test-signing-secret"
	body := []byte(`{"type":"url_verification","challenge":"test"}`)

	t.Run("valid signature", func(t *testing.T) {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		signature := computeSlackSignature(signingSecret, timestamp, string(body))

		err := VerifySlackSignature(signingSecret, timestamp, signature, body)
		if err != nil {
			t.Errorf("expected no error, got: %v", err)
		}
	})

	t.Run("invalid signature", func(t *testing.T) {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)

		err := VerifySlackSignature(signingSecret, timestamp, "v0=invalid_signature", body)
		if err == nil {
			t.Error("expected error for invalid signature, got nil")
		}
	})

	t.Run("missing timestamp", func(t *testing.T) {
		signature := computeSlackSignature(signingSecret, "123456", string(body))

		err := VerifySlackSignature(signingSecret, "", signature, body)
		if err == nil {
			t.Error("expected error for missing timestamp, got nil")
		}
	})

	t.Run("missing signature", func(t *testing.T) {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)

		err := VerifySlackSignature(signingSecret, timestamp, "", body)
		if err == nil {
			t.Error("expected error for missing signature, got nil")
		}
	})

	t.Run("timestamp too old", func(t *testing.T) {
		// Older than the 5 minute replay window
		oldTimestamp := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)
		signature := computeSlackSignature(signingSecret, oldTimestamp, string(body))

		err := VerifySlackSignature(signingSecret, oldTimestamp, signature, body)
		if err == nil {
			t.Error("expected error for old timestamp, got nil")
		}
	})

	t.Run("non-numeric timestamp", func(t *testing.T) {
		signature := computeSlackSignature(signingSecret, "not-a-number", string(body))

		err := VerifySlackSignature(signingSecret, "not-a-number", signature, body)
		if err == nil {
			t.Error("expected error for invalid timestamp, got nil")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		signature := computeSlackSignature("another-secret", timestamp, string(body))

		err := VerifySlackSignature(signingSecret, timestamp, signature, body)
		if err == nil {
			t.Error("expected error for signature from wrong secret, got nil")
		}
	})
}

func newTestServer(t *testing.T, svc *mockSlackService, opts ...httpctrl.Options) *httpctrl.Server {
	t.Helper()
	uc := usecase.New(memory.New(), svc)
	return httpctrl.New(uc, opts...)
}

func TestEventsEndpoint(t *testing.T) {
	t.Run("url_verification echoes the challenge", func(t *testing.T) {
		srv := newTestServer(t, &mockSlackService{})

		body := `{"type":"url_verification","challenge":"abc123"}`
		req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp) != 1 || resp["challenge"] != "abc123" {
			t.Errorf("expected {\"challenge\":\"abc123\"}, got %s", rec.Body.String())
		}
	})

	t.Run("message event is processed before the ack", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, &mockSlackService{})
		srv := httpctrl.New(uc)

		body := `{
			"type": "event_callback",
			"event": {
				"type": "message",
				"channel": "C001",
				"user": "U001",
				"text": "hello",
				"ts": "1700000000.000100"
			}
		}`
		req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp map[string]bool
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp["success"] {
			t.Errorf("expected success response, got %s", rec.Body.String())
		}

		// The record is already visible once the 200 is written
		records, err := repo.Message().Recent(req.Context(), "C001", 10)
		if err != nil {
			t.Fatalf("failed to read records: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 stored record, got %d", len(records))
		}
		if records[0].Text != "hello" {
			t.Errorf("expected stored text %q, got %q", "hello", records[0].Text)
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		srv := newTestServer(t, &mockSlackService{})

		req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown event type is acknowledged", func(t *testing.T) {
		srv := newTestServer(t, &mockSlackService{})

		body := `{"type":"event_callback","event":{"type":"reaction_added"}}`
		req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})
}

func TestSlackSignatureMiddleware(t *testing.T) {
	signingSecret := "test-signing-secret"

	t.Run("signed request passes through", func(t *testing.T) {
		srv := newTestServer(t, &mockSlackService{}, httpctrl.WithSigningSecret(signingSecret))

		body := `{"type":"url_verification","challenge":"abc123"}`
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)

		req := httptest.NewRequest(http.MethodPost, "/slack/events", bytes.NewReader([]byte(body)))
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
		req.Header.Set("X-Slack-Signature", computeSlackSignature(signingSecret, timestamp, body))
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["challenge"] != "abc123" {
			t.Errorf("body was not restored for the handler: %s", rec.Body.String())
		}
	})

	t.Run("unsigned request is rejected", func(t *testing.T) {
		srv := newTestServer(t, &mockSlackService{}, httpctrl.WithSigningSecret(signingSecret))

		body := `{"type":"url_verification","challenge":"abc123"}`
		req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("tampered body is rejected", func(t *testing.T) {
		srv := newTestServer(t, &mockSlackService{}, httpctrl.WithSigningSecret(signingSecret))

		signedBody := `{"type":"url_verification","challenge":"abc123"}`
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)

		req := httptest.NewRequest(http.MethodPost, "/slack/events",
			strings.NewReader(`{"type":"url_verification","challenge":"tampered"}`))
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
		req.Header.Set("X-Slack-Signature", computeSlackSignature(signingSecret, timestamp, signedBody))
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("verification is skipped without a secret", func(t *testing.T) {
		srv := newTestServer(t, &mockSlackService{})

		body := `{"type":"url_verification","challenge":"abc123"}`
		req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 without signature headers, got %d", rec.Code)
		}
	})
}
