package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngestionEvent is an audit record of a completed upload, persisted
// asynchronously by the queue worker.
type IngestionEvent struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"size:36;not null;index" json:"user_id"`
	DocumentID   string    `gorm:"size:36;not null;index" json:"document_id"`
	DocumentName string    `gorm:"size:256;not null" json:"document_name"`
	ChunkCount   int       `gorm:"not null" json:"chunk_count"`
	CreatedAt    time.Time `json:"created_at"`
}

func (e *IngestionEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
