package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/tradestats"
	"google.golang.org/genai"
)

// maxCalls bounds the function calls answered for one question.
const maxCalls = 8

// Commentator is a chat with a model commenting on one dashboard.
type Commentator struct {
	ModelName string
	Config    *genai.GenerateContentConfig
	Library   Library

	report string
	chat   *genai.Chat
}

// NewCommentator returns a commentator on d, whose markdown rendering is report.
func NewCommentator(model string, d *tradestats.Dashboard, report string) *Commentator {
	tools := []Function{metricLookup{d: d}}
	return &Commentator{
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools:             []*genai.Tool{{FunctionDeclarations: NewDeclarations(tools)}},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: SystemInstruction}}},
		},
		Library: NewLibrary(tools),
		report:  report,
	}
}

// NewClient creates a Gemini API client, an empty key falls back to the
// GEMINI_API_KEY and GOOGLE_API_KEY variables.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("cannot create Gemini client: %w", err)
	}
	return client, nil
}

// Start creates the chat session.
func (c *Commentator) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, c.ModelName, c.Config, nil)
	if err != nil {
		return fmt.Errorf("cannot start chat with %s: %w", c.ModelName, err)
	}
	c.chat = chat
	return nil
}

// Comment asks question. The first question carries the report.
func (c *Commentator) Comment(ctx context.Context, question string) (string, error) {
	if c.chat == nil {
		return "", errors.New("commentator is not started")
	}
	text := question
	if c.report != "" {
		text, c.report = Prompt(c.report, question), ""
	}
	content, err := c.ask(ctx, maxCalls, &genai.Part{Text: text})
	if err != nil {
		return "", err
	}
	return contentText(content), nil
}

// ask sends parts and answers the function calls of the model until it
// replies with text.
func (c *Commentator) ask(ctx context.Context, calls int, parts ...*genai.Part) (*genai.Content, error) {
	resp, err := c.chat.Send(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("chat failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("empty response from model")
	}
	content := resp.Candidates[0].Content
	var responses []*genai.Part
	for _, p := range content.Parts {
		if p.FunctionCall != nil {
			responses = append(responses, &genai.Part{FunctionResponse: c.Library(ctx, p.FunctionCall)})
		}
	}
	if len(responses) == 0 {
		return content, nil
	}
	if calls <= 0 {
		return nil, errors.New("too many function calls from model")
	}
	return c.ask(ctx, calls-len(responses), responses...)
}

// contentText concatenates the text parts of content.
func contentText(content *genai.Content) string {
	var b strings.Builder
	for _, p := range content.Parts {
		if p.Text != "" && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
