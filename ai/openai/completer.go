// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/poiesic/graphkb/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	completionTemperature = 0.7
	completionMaxTokens   = 4096
)

// Completer implements ai.Completer using OpenAI-compatible chat APIs.
type Completer struct {
	client llms.Model
	gate   *gate
	logger *slog.Logger
}

// newCompleter is an internal constructor that returns the concrete type
// and shares the provided gate. Used by Provider to manage the instance.
func newCompleter(config *ai.Config, g *gate) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication
	token := config.APIKey
	if token == "" {
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(config.BaseURL),
		openai.WithToken(token),
		openai.WithModel(config.Model),
		openai.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
	)
	if err != nil {
		return nil, err
	}

	return &Completer{
		client: client,
		gate:   g,
		logger: slog.Default().With("component", "openai-completer"),
	}, nil
}

// NewCompleter creates a new completer using the provided configuration.
// The completer carries its own concurrency gate; use NewProvider when the
// gate should be shared with an embedder.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config, newGate(config.MaxConcurrent))
}

// Complete sends a single chat-completion request and returns the model's
// text response. The request fails outright on timeout or a non-2xx
// upstream response; there are no retries at this layer.
func (c *Completer) Complete(ctx context.Context, prompt, systemPrompt string, history []ai.Message) (string, error) {
	content := buildMessages(prompt, systemPrompt, history)

	if err := c.gate.acquire(ctx); err != nil {
		return "", err
	}
	defer c.gate.release()

	c.logger.Debug("sending completion request",
		"prompt_length", len(prompt),
		"history", len(history))

	response, err := c.client.GenerateContent(ctx, content,
		llms.WithTemperature(completionTemperature),
		llms.WithMaxTokens(completionMaxTokens))
	if err != nil {
		c.logger.Error("LLM API error", "err", err)
		return "", fmt.Errorf("llm api error: %w", err)
	}

	if len(response.Choices) < 1 {
		return "", fmt.Errorf("llm api error: response contained no choices")
	}

	return response.Choices[0].Content, nil
}

// buildMessages assembles the chat message sequence: optional system
// message first, then history in the given order, then the user prompt last.
func buildMessages(prompt, systemPrompt string, history []ai.Message) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(history)+2)

	if systemPrompt != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}

	for _, msg := range history {
		content = append(content, llms.TextParts(messageType(msg.Role), msg.Content))
	}

	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, prompt))
	return content
}

// messageType maps a gateway role to the langchaingo chat message type.
func messageType(role ai.Role) llms.ChatMessageType {
	switch role {
	case ai.RoleSystem:
		return llms.ChatMessageTypeSystem
	case ai.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
