package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func chatServer(t *testing.T, status int, body string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("failed to decode request body: %v", err)
			}
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestClient_Chat(t *testing.T) {
	var captured map[string]any
	srv := chatServer(t, http.StatusOK,
		`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`, &captured)
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 5*time.Second)
	got, err := c.Chat(context.Background(), []ChatMessage{TextMessage("user", "hi")}, "DeepSeek-V3", true)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got != `{"ok":true}` {
		t.Errorf("Chat() = %q", got)
	}

	if captured["temperature"] != 0.1 {
		t.Errorf("temperature = %v, want 0.1", captured["temperature"])
	}
	if captured["max_tokens"] != float64(4096) {
		t.Errorf("max_tokens = %v, want 4096", captured["max_tokens"])
	}
	if captured["stream"] != false {
		t.Errorf("stream = %v, want false", captured["stream"])
	}
	rf, ok := captured["response_format"].(map[string]any)
	if !ok || rf["type"] != "json_object" {
		t.Errorf("response_format = %v, want json_object", captured["response_format"])
	}
}

func TestClient_Chat_NoJSONModeForVisionModels(t *testing.T) {
	var captured map[string]any
	srv := chatServer(t, http.StatusOK,
		`{"choices":[{"message":{"content":"text"}}]}`, &captured)
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 5*time.Second)
	if _, err := c.Chat(context.Background(), []ChatMessage{TextMessage("user", "hi")}, "Qwen2-VL-72B", true); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if _, present := captured["response_format"]; present {
		t.Error("response_format must not be sent to non-DeepSeek models")
	}
}

func TestClient_Chat_StatusClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: ErrRateLimited},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrAuthFailed},
		{name: "forbidden", status: http.StatusForbidden, wantErr: ErrAuthFailed},
		{name: "bad request", status: http.StatusBadRequest, wantErr: ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.status, `{"message":"nope"}`, nil)
			defer srv.Close()

			c := NewClient(srv.URL, "test-key", 5*time.Second)
			_, err := c.Chat(context.Background(), []ChatMessage{TextMessage("user", "hi")}, "DeepSeek-V3", false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_Chat_ServerErrorIsTransient(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, "boom", nil)
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 5*time.Second)
	_, err := c.Chat(context.Background(), []ChatMessage{TextMessage("user", "hi")}, "DeepSeek-V3", false)
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, terminal := range []error{ErrRateLimited, ErrAuthFailed, ErrBadRequest, ErrQuotaExceeded} {
		if errors.Is(err, terminal) {
			t.Errorf("5xx classified as %v, want transient", terminal)
		}
	}
}

func TestClient_Chat_MissingKey(t *testing.T) {
	c := NewClient("http://localhost:0", "", time.Second)
	_, err := c.Chat(context.Background(), nil, "DeepSeek-V3", false)
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("err = %v, want ErrAuthFailed", err)
	}
}
