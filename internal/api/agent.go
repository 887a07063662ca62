package api

import (
	"context"
	"fmt"

	"github.com/nhle/mail-assistant/internal/model"
)

// summarizeRequest asks the AI agent to digest one email.
type summarizeRequest struct {
	EmailID string `json:"email_id"`
}

// generateReplyRequest asks for a full reply draft in the given tone.
type generateReplyRequest struct {
	EmailID string     `json:"email_id"`
	Tone    model.Tone `json:"tone"`
}

// GeneratedReply is the agent's reply draft.
type GeneratedReply struct {
	ReplyText string `json:"reply_text"`
}

// chatRefineRequest carries the conversation so far plus the user's
// latest instruction.
type chatRefineRequest struct {
	ConversationHistory []model.ChatMessage `json:"conversation_history"`
	UserMessage         string              `json:"user_message"`
}

// ChatRefineResponse returns the agent's authoritative copy of the
// conversation, with the refined draft as the final assistant turn.
type ChatRefineResponse struct {
	UpdatedHistory []model.ChatMessage `json:"updated_history"`
}

// Summarize asks the agent for a summary of the given email.
func (c *Client) Summarize(
	ctx context.Context,
	emailID string,
) (*model.EmailSummary, error) {
	var result model.EmailSummary
	req := summarizeRequest{EmailID: emailID}
	if err := c.post(ctx, "/api/agent/summarize", req, &result); err != nil {
		return nil, fmt.Errorf("summarizing email %s: %w", emailID, err)
	}
	return &result, nil
}

// GenerateReply asks the agent to draft a reply to the given email.
func (c *Client) GenerateReply(
	ctx context.Context,
	emailID string,
	tone model.Tone,
) (*GeneratedReply, error) {
	var result GeneratedReply
	req := generateReplyRequest{EmailID: emailID, Tone: tone}
	if err := c.post(ctx, "/api/agent/generate-reply", req, &result); err != nil {
		return nil, fmt.Errorf("generating reply for %s: %w", emailID, err)
	}
	return &result, nil
}

// ChatRefine sends the conversation history plus a new user instruction
// and returns the updated history.
func (c *Client) ChatRefine(
	ctx context.Context,
	history []model.ChatMessage,
	userMessage string,
) (*ChatRefineResponse, error) {
	var result ChatRefineResponse
	req := chatRefineRequest{
		ConversationHistory: history,
		UserMessage:         userMessage,
	}
	if err := c.post(ctx, "/api/agent/chat-refine", req, &result); err != nil {
		return nil, fmt.Errorf("refining reply: %w", err)
	}
	return &result, nil
}
