package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.RAG.MaxTokens)
	assert.Equal(t, 100, cfg.RAG.OverlapTokens)
	assert.Equal(t, 10, cfg.RAG.TopK)
	assert.InDelta(t, 0.75, cfg.RAG.MaxDistance, 1e-9)
	assert.Equal(t, 3, cfg.RAG.HistoryWindow)
	assert.Equal(t, int64(10<<20), cfg.RAG.MaxUploadBytes)
	assert.Equal(t, 500, cfg.RAG.AnswerMaxTokens)
	assert.InDelta(t, 0.3, cfg.RAG.Temperature, 1e-9)
	assert.Equal(t, 1536, cfg.LLM.EmbeddingDimensions)
}

func TestLoad_RAGEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("RAG_TOP_K", "5")
	t.Setenv("RAG_MAX_DISTANCE", "0.6")
	t.Setenv("RAG_HISTORY_WINDOW", "7")
	t.Setenv("RAG_MAX_UPLOAD_BYTES", "2097152")
	t.Setenv("RAG_ANSWER_MAX_TOKENS", "256")
	t.Setenv("RAG_TEMPERATURE", "0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.InDelta(t, 0.6, cfg.RAG.MaxDistance, 1e-9)
	assert.Equal(t, 7, cfg.RAG.HistoryWindow)
	assert.Equal(t, int64(2097152), cfg.RAG.MaxUploadBytes)
	assert.Equal(t, 256, cfg.RAG.AnswerMaxTokens)
	assert.InDelta(t, 0.1, cfg.RAG.Temperature, 1e-9)
}

func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("RAG_MAX_DISTANCE", "not-a-number")
	t.Setenv("RAG_TOP_K", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.75, cfg.RAG.MaxDistance, 1e-9)
	assert.Equal(t, 10, cfg.RAG.TopK)
}

func TestPostgresDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.Postgres.Password = "pw"
	assert.Equal(t,
		"host=127.0.0.1 port=5432 user=postgres password=pw dbname=docquery sslmode=disable",
		cfg.PostgresDSN())
}
