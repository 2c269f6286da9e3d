package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// Event Type Tests
// =============================================================================

func TestEventTypes(t *testing.T) {
	types := []EventType{
		EventRunStarted,
		EventRunCompleted,
		EventRunFailed,
		EventArtifactSaved,
		EventArtifactDelete,
	}

	seen := make(map[EventType]bool)
	for _, et := range types {
		if seen[et] {
			t.Errorf("duplicate event type: %s", et)
		}
		seen[et] = true
	}
}

// =============================================================================
// NopNotifier Tests
// =============================================================================

func TestNopNotifier(t *testing.T) {
	err := NopNotifier{}.Notify(context.Background(), Event{
		Type:    EventRunStarted,
		Message: "test",
	})
	if err != nil {
		t.Errorf("NopNotifier.Notify() error = %v, want nil", err)
	}
}

// =============================================================================
// LogNotifier Tests
// =============================================================================

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	n := NewLogNotifier(logger)
	err := n.Notify(context.Background(), Event{
		Type:      EventArtifactSaved,
		RunID:     "2026-01-02-train-abcd1234",
		Artifact:  "metrics.json",
		Message:   "artifact saved",
		Severity:  SeverityInfo,
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Errorf("LogNotifier.Notify() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"artifact saved", "2026-01-02-train-abcd1234", "artifact=metrics.json"} {
		if !strings.Contains(output, want) {
			t.Errorf("log output missing %q: %s", want, output)
		}
	}
}

func TestLogNotifier_Severity(t *testing.T) {
	tests := []struct {
		severity string
		wantLog  string
	}{
		{SeverityInfo, "level=INFO"},
		{SeverityWarning, "level=WARN"},
		{SeverityError, "level=ERROR"},
		{"", "level=INFO"},
	}

	for _, tt := range tests {
		t.Run("severity_"+tt.severity, func(t *testing.T) {
			var buf bytes.Buffer
			n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

			if err := n.Notify(context.Background(), Event{
				Type:     EventRunFailed,
				Message:  "test",
				Severity: tt.severity,
			}); err != nil {
				t.Errorf("Notify() error = %v", err)
			}

			if !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("log output = %q, want to contain %q", buf.String(), tt.wantLog)
			}
		})
	}
}

func TestLogNotifier_NilLogger(t *testing.T) {
	n := NewLogNotifier(nil)
	if n.Logger == nil {
		t.Error("NewLogNotifier should use default logger when nil")
	}
}

// =============================================================================
// WebhookNotifier Tests
// =============================================================================

func TestWebhookNotifier(t *testing.T) {
	var receivedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s, want application/json", ct)
		}
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, nil)
	err := n.Notify(context.Background(), Event{
		Type:      EventRunCompleted,
		RunID:     "run-123",
		Message:   "run completed",
		Severity:  SeverityInfo,
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Errorf("WebhookNotifier.Notify() error = %v", err)
	}

	var parsed Event
	if err := json.Unmarshal(receivedBody, &parsed); err != nil {
		t.Fatalf("failed to parse received body: %v", err)
	}
	if parsed.RunID != "run-123" {
		t.Errorf("received RunID = %s, want run-123", parsed.RunID)
	}
	if parsed.Type != EventRunCompleted {
		t.Errorf("received Type = %s, want %s", parsed.Type, EventRunCompleted)
	}
}

func TestWebhookNotifier_CustomHeaders(t *testing.T) {
	var receivedAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, map[string]string{
		"Authorization": "Bearer test-token",
	})
	if err := n.Notify(context.Background(), Event{Type: EventRunStarted}); err != nil {
		t.Errorf("Notify() error = %v", err)
	}

	if receivedAuth != "Bearer test-token" {
		t.Errorf("Authorization header = %q, want 'Bearer test-token'", receivedAuth)
	}
}

func TestWebhookNotifier_EventFilter(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, nil)
	n.Events = []EventType{EventRunFailed}

	ctx := context.Background()
	for _, et := range []EventType{EventRunStarted, EventArtifactSaved, EventRunFailed} {
		if err := n.Notify(ctx, Event{Type: et}); err != nil {
			t.Fatalf("Notify(%s) error = %v", et, err)
		}
	}

	if hits != 1 {
		t.Errorf("webhook hits = %d, want 1", hits)
	}
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, nil).WithRetry(1, time.Millisecond, 5*time.Millisecond)
	if err := n.Notify(context.Background(), Event{Type: EventRunStarted}); err == nil {
		t.Error("Notify() should return error for 500 status")
	}
	if hits != 2 {
		t.Errorf("attempts = %d, want 2", hits)
	}
}

func TestWebhookNotifier_ClientErrorNotRetried(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, nil).WithRetry(3, time.Millisecond, 5*time.Millisecond)
	if err := n.Notify(context.Background(), Event{Type: EventRunStarted}); err == nil {
		t.Error("Notify() should return error for 400 status")
	}
	if hits != 1 {
		t.Errorf("attempts = %d, want 1", hits)
	}
}

func TestWebhookNotifier_RetriesTransientFailure(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, nil).WithRetry(2, time.Millisecond, 5*time.Millisecond)
	if err := n.Notify(context.Background(), Event{Type: EventRunCompleted}); err != nil {
		t.Errorf("Notify() error = %v, want success after retry", err)
	}
	if hits != 2 {
		t.Errorf("attempts = %d, want 2", hits)
	}
}

func TestWebhookNotifier_NetworkError(t *testing.T) {
	n := NewWebhookNotifier("http://localhost:99999", nil).WithRetry(0, time.Millisecond, time.Millisecond)
	if err := n.Notify(context.Background(), Event{Type: EventRunStarted}); err == nil {
		t.Error("Notify() should return error for network failure")
	}
}

// =============================================================================
// MultiNotifier Tests
// =============================================================================

func TestMultiNotifier(t *testing.T) {
	var calls []string

	multi := NewMultiNotifier(
		&mockNotifier{name: "n1", calls: &calls},
		&mockNotifier{name: "n2", calls: &calls},
	)

	if err := multi.Notify(context.Background(), Event{Type: EventRunStarted}); err != nil {
		t.Errorf("MultiNotifier.Notify() error = %v", err)
	}

	if len(calls) != 2 || calls[0] != "n1" || calls[1] != "n2" {
		t.Errorf("calls = %v, want [n1 n2]", calls)
	}
}

func TestMultiNotifier_ContinuesOnError(t *testing.T) {
	var calls []string

	multi := NewMultiNotifier(
		&mockNotifier{name: "n1", calls: &calls, err: context.DeadlineExceeded},
		&mockNotifier{name: "n2", calls: &calls},
	)
	var logBuf bytes.Buffer
	multi.Logger = slog.New(slog.NewTextHandler(&logBuf, nil))

	err := multi.Notify(context.Background(), Event{Type: EventRunStarted})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
	if len(calls) != 2 {
		t.Errorf("call count = %d, want 2", len(calls))
	}
	if !strings.Contains(logBuf.String(), "notifier failed") {
		t.Errorf("expected warning in log, got %q", logBuf.String())
	}
}

type mockNotifier struct {
	name  string
	calls *[]string
	err   error
}

func (m *mockNotifier) Notify(_ context.Context, _ Event) error {
	*m.calls = append(*m.calls, m.name)
	return m.err
}
