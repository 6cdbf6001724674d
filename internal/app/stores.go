package app

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"docquery/internal/ai"
	"docquery/internal/model"
	"docquery/internal/repository"
)

// Store and provider dependencies are taken as interfaces so services are
// constructed with explicit clients rather than package-level handles.

type DocumentStore interface {
	CreateWithChunks(ctx context.Context, doc *model.Document, chunks []model.Chunk) error
	ListByUserID(userID string) ([]model.Document, error)
	CountByUserID(userID string) (int64, error)
	GetByIDAndUserID(id, userID string) (*model.Document, error)
	GetNamesByIDs(ids []string) (map[string]string, error)
	DeleteWithChunks(ctx context.Context, id string) error
}

type ChunkSearcher interface {
	SearchNearest(userID, documentID string, query pgvector.Vector, k int) ([]repository.ChunkMatch, error)
}

type SessionStore interface {
	Create(session *model.ChatSession) error
	ReplaceContent(session *model.ChatSession) error
	ListByUserID(userID string) ([]model.ChatSession, error)
	GetByIDAndUserID(id, userID string) (*model.ChatSession, error)
	DeleteByIDAndUserID(id, userID string) (bool, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Completer interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, opts ai.CompleteOptions) (string, error)
}

type IngestEventPublisher interface {
	Publish(ctx context.Context, event model.IngestionEvent) error
}

type SessionCache interface {
	Get(ctx context.Context, userID string) ([]model.ChatSession, bool, error)
	Set(ctx context.Context, userID string, sessions []model.ChatSession) error
	Invalidate(ctx context.Context, userID string) error
}
