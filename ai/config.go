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


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the LLM gateway.
type Config struct {
	// APIKey is the bearer token for the upstream API.
	// May be empty for local OpenAI-compatible services without auth.
	APIKey string

	// BaseURL is the base URL of the OpenAI-compatible API.
	// Example: "https://dashscope.aliyuncs.com/compatible-mode/v1"
	BaseURL string

	// Model is the chat-completion model identifier.
	// Example: "qwen-turbo"
	Model string

	// EmbeddingModel is the embedding model identifier.
	// Example: "text-embedding-v3"
	EmbeddingModel string

	// Timeout is the fixed per-request HTTP timeout.
	// Default: 60 seconds.
	Timeout time.Duration

	// MaxConcurrent bounds simultaneous in-flight gateway calls across
	// completion and embedding combined. 0 means unlimited.
	MaxConcurrent int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithAPIKey sets the upstream API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL sets the upstream API base URL.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel sets the chat-completion model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxConcurrent sets the shared in-flight call limit. 0 disables the gate.
func WithMaxConcurrent(limit int) ConfigOption {
	return func(c *Config) {
		c.MaxConcurrent = limit
	}
}

// DefaultConfig returns a Config with defaults for the DashScope
// compatible-mode API.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://dashscope.aliyuncs.com/compatible-mode/v1",
		Model:          "qwen-turbo",
		EmbeddingModel: "text-embedding-v3",
		Timeout:        60 * time.Second,
		MaxConcurrent:  0,
	}
}

// NewConfig creates a Config with default values and applies the provided
// options. This is the recommended way to create a Config.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to the base URL if missing, which is required by
// most OpenAI-compatible APIs (DashScope, Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.BaseURL != "" && !strings.HasSuffix(c.BaseURL, "/v1") {
		c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
		c.BaseURL = c.BaseURL + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BaseURL == "" {
		return errors.New("ai config: BaseURL is required")
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.Timeout <= 0 {
		return errors.New("ai config: Timeout must be positive")
	}
	if c.MaxConcurrent < 0 {
		return errors.New("ai config: MaxConcurrent cannot be negative")
	}
	return nil
}
