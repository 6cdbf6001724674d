package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docquery/internal/model"
)

type ChatSessionRepository struct {
	db *gorm.DB
}

func NewChatSessionRepository(db *gorm.DB) *ChatSessionRepository {
	return &ChatSessionRepository{db: db}
}

func (r *ChatSessionRepository) Create(session *model.ChatSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create chat session failed: %w", err)
	}
	return nil
}

// ReplaceContent overwrites title and the whole message list of an existing
// session. There is no append or merge path.
func (r *ChatSessionRepository) ReplaceContent(session *model.ChatSession) error {
	err := r.db.Model(&model.ChatSession{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{
			"title":    session.Title,
			"messages": session.Messages,
		}).Error
	if err != nil {
		return fmt.Errorf("update chat session failed: %w", err)
	}
	return nil
}

func (r *ChatSessionRepository) ListByUserID(userID string) ([]model.ChatSession, error) {
	var list []model.ChatSession
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list chat sessions failed: %w", err)
	}
	return list, nil
}

func (r *ChatSessionRepository) GetByIDAndUserID(id, userID string) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat session failed: %w", err)
	}
	return &session, nil
}

func (r *ChatSessionRepository) DeleteByIDAndUserID(id, userID string) (bool, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.ChatSession{})
	if result.Error != nil {
		return false, fmt.Errorf("delete chat session failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
