package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "https://dashscope.aliyuncs.com/compatible-mode/v1", cfg.BaseURL)
	assert.Equal(t, "qwen-turbo", cfg.Model)
	assert.Equal(t, "text-embedding-v3", cfg.EmbeddingModel)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 0, cfg.MaxConcurrent)
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithAPIKey("sk-test"),
		WithBaseURL("http://localhost:11434/v1"),
		WithModel("qwen2.5:3b"),
		WithEmbeddingModel("embeddinggemma"),
		WithTimeout(30*time.Second),
		WithMaxConcurrent(4),
	)

	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.BaseURL)
	assert.Equal(t, "qwen2.5:3b", cfg.Model)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.MaxConcurrent)
}

func TestConfig_Normalize(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"adds v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"keeps existing v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty untouched", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{BaseURL: tc.in}
			cfg.Normalize()
			assert.Equal(t, tc.want, cfg.BaseURL)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid default", func(t *testing.T) {
		require.NoError(t, NewConfig().Validate())
	})

	t.Run("empty API key is allowed", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey(""))
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing base URL", func(t *testing.T) {
		cfg := NewConfig(WithBaseURL(""))
		require.Error(t, cfg.Validate())
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := NewConfig(WithModel(""))
		require.Error(t, cfg.Validate())
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel(""))
		require.Error(t, cfg.Validate())
	})

	t.Run("zero timeout", func(t *testing.T) {
		cfg := NewConfig(WithTimeout(0))
		require.Error(t, cfg.Validate())
	})

	t.Run("negative concurrency", func(t *testing.T) {
		cfg := NewConfig(WithMaxConcurrent(-1))
		require.Error(t, cfg.Validate())
	})
}
