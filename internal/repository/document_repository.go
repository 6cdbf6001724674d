package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docquery/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// CreateWithChunks persists a document and its full chunk set in one
// transaction. Readers never observe the document without all its chunks.
func (r *DocumentRepository) CreateWithChunks(ctx context.Context, doc *model.Document, chunks []model.Chunk) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("create document failed: %w", err)
		}
		for i := range chunks {
			chunks[i].DocumentID = doc.ID
		}
		if len(chunks) > 0 {
			if err := tx.Create(&chunks).Error; err != nil {
				return fmt.Errorf("create chunks failed: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("persist document with chunks failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) ListByUserID(userID string) ([]model.Document, error) {
	var list []model.Document
	err := r.db.
		Model(&model.Document{}).
		Select("documents.*, count(chunks.id) AS chunk_count").
		Joins("LEFT JOIN chunks ON chunks.document_id = documents.id").
		Where("documents.user_id = ?", userID).
		Group("documents.id").
		Order("documents.uploaded_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return list, nil
}

func (r *DocumentRepository) CountByUserID(userID string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Document{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count documents failed: %w", err)
	}
	return count, nil
}

func (r *DocumentRepository) GetByIDAndUserID(id, userID string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

// GetNamesByIDs resolves display names for a set of document IDs in one query.
func (r *DocumentRepository) GetNamesByIDs(ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	var rows []struct {
		ID   string
		Name string
	}
	if err := r.db.Model(&model.Document{}).Select("id, name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("resolve document names failed: %w", err)
	}
	names := make(map[string]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

// DeleteWithChunks removes a document and its chunks atomically. The caller
// is responsible for the ownership check.
func (r *DocumentRepository) DeleteWithChunks(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&model.Chunk{}).Error; err != nil {
			return fmt.Errorf("delete chunks failed: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&model.Document{}).Error; err != nil {
			return fmt.Errorf("delete document failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete document with chunks failed: %w", err)
	}
	return nil
}
