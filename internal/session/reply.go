package session

import (
	"strings"

	"github.com/nhle/mail-assistant/internal/model"
)

// replyPrefix is prepended to the subject unless already present.
const replyPrefix = "Re:"

// BuildReply assembles the outgoing draft for a reply to email with the
// given body. The recipient is the original sender, the subject gains a
// "Re: " prefix when missing, and the threading headers chain the
// original message: references = original references + message_id
// (empty entries dropped), in_reply_to = message_id.
func BuildReply(email model.Email, body string) model.Draft {
	subject := email.Subject
	if !strings.HasPrefix(subject, replyPrefix) {
		subject = replyPrefix + " " + subject
	}

	refs := make([]string, 0, len(email.References)+1)
	for _, r := range email.References {
		if r != "" {
			refs = append(refs, r)
		}
	}
	if email.MessageID != "" {
		refs = append(refs, email.MessageID)
	}

	return model.Draft{
		To:         []string{email.From},
		Cc:         email.Cc,
		Subject:    subject,
		Body:       body,
		InReplyTo:  email.MessageID,
		References: refs,
	}
}
