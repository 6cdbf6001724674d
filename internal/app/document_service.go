package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/pgvector/pgvector-go"

	"docquery/internal/chunker"
	"docquery/internal/model"
	"docquery/internal/pkg/extract"
)

// DocumentService runs the ingestion pipeline and owns document listing and
// deletion.
type DocumentService struct {
	docStore    DocumentStore
	embedder    Embedder
	publisher   IngestEventPublisher
	chunkParams chunker.Params
	maxUpload   int64
}

func NewDocumentService(
	docStore DocumentStore,
	embedder Embedder,
	publisher IngestEventPublisher,
	chunkParams chunker.Params,
	maxUploadBytes int64,
) *DocumentService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &DocumentService{
		docStore:    docStore,
		embedder:    embedder,
		publisher:   publisher,
		chunkParams: chunkParams,
		maxUpload:   maxUploadBytes,
	}
}

type IngestInput struct {
	UserID   string
	Filename string
	Data     []byte
}

type IngestResult struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	ChunkCount   int    `json:"chunk_count"`
}

// Ingest validates the upload, extracts text, chunks it, embeds every chunk
// in one batch, and persists document plus chunks in a single transaction.
// Precondition failures are distinct errors, checked in order: file type,
// size, empty text, empty chunk set.
func (s *DocumentService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if input.UserID == "" {
		return nil, ErrInvalidInput
	}
	name := strings.TrimSpace(input.Filename)
	if name == "" {
		return nil, fmt.Errorf("%w: missing file name", ErrInvalidInput)
	}

	if !extract.Allowed(name) {
		return nil, fmt.Errorf("%w, allowed: %s", ErrFileType, strings.Join(extract.Extensions(), ", "))
	}
	if int64(len(input.Data)) > s.maxUpload {
		return nil, fmt.Errorf("%w (max %d bytes)", ErrFileTooLarge, s.maxUpload)
	}

	text, err := extract.Text(name, input.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyFile
	}

	pieces := chunker.Split(text, s.chunkParams)
	if len(pieces) == 0 {
		return nil, ErrNoChunks
	}

	contents := make([]string, len(pieces))
	for i, piece := range pieces {
		contents[i] = piece.Content
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("embed chunks failed: %w", err)
	}
	if len(embeddings) != len(pieces) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(pieces), len(embeddings))
	}

	doc := &model.Document{
		UserID:  input.UserID,
		Name:    name,
		Content: text,
	}
	chunks := make([]model.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = model.Chunk{
			Content:    piece.Content,
			Embedding:  pgvector.NewVector(embeddings[i]),
			TokenCount: piece.TokenCount,
			ChunkIndex: i,
		}
	}

	if err := s.docStore.CreateWithChunks(ctx, doc, chunks); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := model.IngestionEvent{
			UserID:       input.UserID,
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			ChunkCount:   len(chunks),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			// Audit is best-effort; the upload already committed.
			log.Printf("publish ingestion event failed for document %s: %v", doc.ID, err)
		}
	}

	return &IngestResult{
		DocumentID:   doc.ID,
		DocumentName: doc.Name,
		ChunkCount:   len(chunks),
	}, nil
}

func (s *DocumentService) ListDocuments(userID string) ([]model.Document, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.docStore.ListByUserID(userID)
}

// DeleteDocument removes a document and its chunks after an ownership check.
func (s *DocumentService) DeleteDocument(ctx context.Context, userID, documentID string) error {
	if userID == "" || documentID == "" {
		return ErrInvalidInput
	}
	doc, err := s.docStore.GetByIDAndUserID(documentID, userID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	return s.docStore.DeleteWithChunks(ctx, doc.ID)
}
