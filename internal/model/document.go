package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is an uploaded file's extracted text. Immutable after creation;
// deleting it cascades to its chunks.
type Document struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;index" json:"user_id"`
	Name       string    `gorm:"size:256;not null" json:"name"`
	Content    string    `gorm:"type:text;not null" json:"-"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	// Populated by repository list queries, not a column.
	ChunkCount int64 `gorm:"-" json:"chunk_count"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
