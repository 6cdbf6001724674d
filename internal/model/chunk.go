package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Chunk is one token-bounded slice of a document with its embedding. Chunks
// are written once per document in a single transaction; chunk_index is the
// dense 0..n-1 position in chunking order.
type Chunk struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	DocumentID string          `gorm:"size:36;not null;index" json:"document_id"`
	Content    string          `gorm:"type:text;not null" json:"content"`
	Embedding  pgvector.Vector `gorm:"type:vector(1536)" json:"-"`
	TokenCount int             `gorm:"not null" json:"token_count"`
	ChunkIndex int             `gorm:"not null" json:"chunk_index"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (c *Chunk) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
