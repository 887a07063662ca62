package session

import (
	"testing"

	"github.com/nhle/mail-assistant/internal/model"
)

func TestBuildReplySubjectPrefix(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"Hello", "Re: Hello"},
		{"Re: Hello", "Re: Hello"},
		{"Re: Re: Hello", "Re: Re: Hello"},
		{"", "Re: "},
		{"FYI re: budget", "Re: FYI re: budget"},
	}

	for _, tt := range tests {
		draft := BuildReply(model.Email{Subject: tt.subject}, "body")
		if draft.Subject != tt.want {
			t.Errorf("BuildReply subject %q = %q; want %q",
				tt.subject, draft.Subject, tt.want)
		}
	}
}

func TestBuildReplyThreading(t *testing.T) {
	email := model.Email{
		MessageID:  "<c@example.com>",
		From:       "alice@example.com",
		Cc:         []string{"bob@example.com"},
		Subject:    "Plans",
		References: []string{"<a@example.com>", "", "<b@example.com>"},
	}

	draft := BuildReply(email, "sounds good")

	if draft.InReplyTo != "<c@example.com>" {
		t.Errorf("in_reply_to = %q; want %q", draft.InReplyTo, "<c@example.com>")
	}

	want := []string{"<a@example.com>", "<b@example.com>", "<c@example.com>"}
	if len(draft.References) != len(want) {
		t.Fatalf("references = %v; want %v", draft.References, want)
	}
	for i, r := range want {
		if draft.References[i] != r {
			t.Errorf("references[%d] = %q; want %q", i, draft.References[i], r)
		}
	}

	if len(draft.To) != 1 || draft.To[0] != "alice@example.com" {
		t.Errorf("to = %v; want the original sender", draft.To)
	}
	if len(draft.Cc) != 1 || draft.Cc[0] != "bob@example.com" {
		t.Errorf("cc = %v; want carried over", draft.Cc)
	}
	if draft.Body != "sounds good" {
		t.Errorf("body = %q; want %q", draft.Body, "sounds good")
	}
}

func TestBuildReplyEmptyMessageID(t *testing.T) {
	email := model.Email{
		From:       "alice@example.com",
		Subject:    "Plans",
		References: []string{"<a@example.com>"},
	}

	draft := BuildReply(email, "ok")

	if draft.InReplyTo != "" {
		t.Errorf("in_reply_to = %q; want empty", draft.InReplyTo)
	}
	if len(draft.References) != 1 || draft.References[0] != "<a@example.com>" {
		t.Errorf("references = %v; want only the original chain", draft.References)
	}
}
