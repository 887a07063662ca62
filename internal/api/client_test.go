package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nhle/mail-assistant/internal/model"
)

func TestCheckEmailsParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s; want POST", r.Method)
			}
			if r.URL.Path != "/api/emails/check" {
				t.Errorf("path = %s; want /api/emails/check", r.URL.Path)
			}
			if got := r.URL.Query().Get("limit"); got != "20" {
				t.Errorf("limit = %s; want 20", got)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"new_emails_count": 1,
				"emails": [{"id": "e1", "from": "a@example.com", "subject": "Hi"}],
				"last_check": "2026-09-01T10:00:00Z"
			}`))
		}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	resp, err := client.CheckEmails(context.Background(), 20)
	if err != nil {
		t.Fatalf("CheckEmails: %v", err)
	}

	if resp.NewCount != 1 {
		t.Errorf("new count = %d; want 1", resp.NewCount)
	}
	if len(resp.Emails) != 1 || resp.Emails[0].ID != "e1" {
		t.Errorf("emails = %+v; want one email e1", resp.Emails)
	}
}

func TestBearerTokenHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`[]`))
		}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token", 5*time.Second)
	if _, err := client.ListEmails(context.Background(), 10); err != nil {
		t.Fatalf("ListEmails: %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q; want bearer token", gotAuth)
	}
}

func TestUnauthorizedReturnsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
	defer server.Close()

	client := NewClient(server.URL, "bad", 5*time.Second)
	_, err := client.ListEmails(context.Background(), 10)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsAuthError(err) {
		t.Errorf("IsAuthError(%v) = false; want true", err)
	}
}

func TestErrorEnvelopeDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail": "unknown email id"}`))
		}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	_, err := client.GetEmail(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected an error")
	}
	if want := "unknown email id"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %v; want it to contain %q", err, want)
	}
}

func TestRateLimitRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`[]`))
		}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	if _, err := client.ListEmails(context.Background(), 10); err != nil {
		t.Fatalf("ListEmails: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d; want 2", attempts)
	}
}

func TestSendEmailWrapsDraft(t *testing.T) {
	var got struct {
		Draft model.Draft `json:"draft"`
	}
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decoding request: %v", err)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	draft := model.Draft{
		To:      []string{"alice@example.com"},
		Subject: "Re: Hi",
		Body:    "hello",
	}
	if err := client.SendEmail(context.Background(), draft); err != nil {
		t.Fatalf("SendEmail: %v", err)
	}

	if got.Draft.Subject != "Re: Hi" {
		t.Errorf("sent subject = %q; want %q", got.Draft.Subject, "Re: Hi")
	}
	if len(got.Draft.To) != 1 || got.Draft.To[0] != "alice@example.com" {
		t.Errorf("sent to = %v; want [alice@example.com]", got.Draft.To)
	}
}

func TestChatRefineRequestShape(t *testing.T) {
	var got struct {
		ConversationHistory []model.ChatMessage `json:"conversation_history"`
		UserMessage         string              `json:"user_message"`
	}
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/agent/chat-refine" {
				t.Errorf("path = %s; want /api/agent/chat-refine", r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decoding request: %v", err)
			}
			w.Write([]byte(`{"updated_history": [
				{"id": "1", "role": "user", "content": "shorter"},
				{"id": "2", "role": "assistant", "content": "draft v2"}
			]}`))
		}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	history := []model.ChatMessage{
		{ID: "0", Role: model.RoleAssistant, Content: "draft v1"},
	}
	resp, err := client.ChatRefine(context.Background(), history, "shorter")
	if err != nil {
		t.Fatalf("ChatRefine: %v", err)
	}

	if len(got.ConversationHistory) != 1 {
		t.Errorf("sent history = %d entries; want 1", len(got.ConversationHistory))
	}
	if got.UserMessage != "shorter" {
		t.Errorf("sent message = %q; want %q", got.UserMessage, "shorter")
	}
	if len(resp.UpdatedHistory) != 2 {
		t.Errorf("updated history = %d entries; want 2", len(resp.UpdatedHistory))
	}
	if resp.UpdatedHistory[1].Content != "draft v2" {
		t.Errorf("final turn = %q; want %q", resp.UpdatedHistory[1].Content, "draft v2")
	}
}
