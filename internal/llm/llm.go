// Package llm relays chat messages to an OpenAI-compatible generative API.
// Each call is stateless: no conversation history is sent, and every failure
// collapses to one generic error the chat widget can render inline.
package llm

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"quizmaster/internal/model"
)

const systemInstruction = "You are a helpful AI assistant for an educational quiz platform. " +
	"You help students understand concepts and help teachers create questions. Keep answers concise."

// defaultImagePrompt substitutes for a blank message when an image is
// attached.
const defaultImagePrompt = "Analyze this image"

// fallbackText is returned when the API answers without any text.
const fallbackText = "No response generated."

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new chat relay client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Chat forwards one message, with an optional base64 image, and returns the
// response text. A blank message with an image gets the default prompt. Any
// transport or API failure is logged here and surfaced to the caller as
// model.ErrRemoteService only.
func (c *Client) Chat(ctx context.Context, message, imageBase64 string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			buildUserMessage(message, imageBase64),
		},
	})
	if err != nil {
		slog.Error("chat relay call failed", "error", err)
		return "", model.ErrRemoteService
	}

	if len(resp.Choices) == 0 {
		return fallbackText, nil
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return fallbackText, nil
	}
	return text, nil
}

// buildUserMessage assembles the content parts: the inline image first when
// present, then the text. A blank message with an image gets the default
// prompt, and any data-URL prefix is stripped so the payload is clean
// base64.
func buildUserMessage(message, imageBase64 string) openai.ChatCompletionMessage {
	message = strings.TrimSpace(message)
	if message == "" && imageBase64 != "" {
		message = defaultImagePrompt
	}

	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if imageBase64 == "" {
		msg.Content = message
		return msg
	}

	data := dataURLPrefix.ReplaceAllString(imageBase64, "")
	msg.MultiContent = []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: "data:image/png;base64," + data,
			},
		},
		{
			Type: openai.ChatMessagePartTypeText,
			Text: message,
		},
	}
	return msg
}
