package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/nhle/mail-assistant/internal/model"
)

// CheckEmailsResponse is the result of a new-mail check.
type CheckEmailsResponse struct {
	NewCount  int           `json:"new_emails_count"`
	Emails    []model.Email `json:"emails"`
	LastCheck time.Time     `json:"last_check"`
}

// sendEmailRequest wraps a draft for the send endpoint.
type sendEmailRequest struct {
	Draft model.Draft `json:"draft"`
}

// CheckEmails asks the backend for messages that arrived since the last
// check, up to limit.
func (c *Client) CheckEmails(
	ctx context.Context,
	limit int,
) (*CheckEmailsResponse, error) {
	var result CheckEmailsResponse
	path := fmt.Sprintf("/api/emails/check?limit=%d", limit)
	if err := c.post(ctx, path, nil, &result); err != nil {
		return nil, fmt.Errorf("checking emails: %w", err)
	}
	return &result, nil
}

// ListEmails returns up to limit unread messages from the inbox.
func (c *Client) ListEmails(
	ctx context.Context,
	limit int,
) ([]model.Email, error) {
	var result []model.Email
	path := fmt.Sprintf("/api/emails/?limit=%d", limit)
	if err := c.get(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("listing emails: %w", err)
	}
	return result, nil
}

// GetEmail fetches a single message by ID.
func (c *Client) GetEmail(
	ctx context.Context,
	emailID string,
) (*model.Email, error) {
	var result model.Email
	path := "/api/emails/" + url.PathEscape(emailID)
	if err := c.get(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("getting email %s: %w", emailID, err)
	}
	return &result, nil
}

// MarkRead flags a message as read on the server.
func (c *Client) MarkRead(ctx context.Context, emailID string) error {
	path := "/api/emails/" + url.PathEscape(emailID) + "/mark-read"
	if err := c.post(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("marking email %s read: %w", emailID, err)
	}
	return nil
}

// MarkUnread flags a message as unread on the server.
func (c *Client) MarkUnread(ctx context.Context, emailID string) error {
	path := "/api/emails/" + url.PathEscape(emailID) + "/mark-unread"
	if err := c.post(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("marking email %s unread: %w", emailID, err)
	}
	return nil
}

// SendEmail submits a reply draft for delivery.
func (c *Client) SendEmail(ctx context.Context, draft model.Draft) error {
	req := sendEmailRequest{Draft: draft}
	if err := c.post(ctx, "/api/emails/send", req, nil); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
