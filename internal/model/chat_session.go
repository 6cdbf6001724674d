package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SourceRef is one retrieved chunk as shown to the user alongside an answer.
type SourceRef struct {
	DocumentName string  `json:"document_name"`
	ChunkText    string  `json:"chunk_text"`
	Similarity   float64 `json:"similarity"`
}

// ChatMessage is one question/answer exchange with its sources.
type ChatMessage struct {
	Question  string      `json:"question"`
	Answer    string      `json:"answer"`
	Sources   []SourceRef `json:"sources"`
	Timestamp time.Time   `json:"timestamp"`
}

// ChatSession persists an ordered conversation. Saves replace the whole
// message list; there is no append path.
type ChatSession struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	UserID    string         `gorm:"size:36;not null;index" json:"user_id"`
	Title     string         `gorm:"size:256;not null" json:"title"`
	Messages  datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (s *ChatSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// DecodeMessages parses the stored JSON message list.
func (s *ChatSession) DecodeMessages() ([]ChatMessage, error) {
	if len(s.Messages) == 0 {
		return nil, nil
	}
	var messages []ChatMessage
	if err := json.Unmarshal(s.Messages, &messages); err != nil {
		return nil, fmt.Errorf("decode session messages failed: %w", err)
	}
	return messages, nil
}

// EncodeMessages stores the message list as JSON.
func (s *ChatSession) EncodeMessages(messages []ChatMessage) error {
	if messages == nil {
		messages = []ChatMessage{}
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode session messages failed: %w", err)
	}
	s.Messages = datatypes.JSON(raw)
	return nil
}
