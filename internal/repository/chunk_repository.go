package repository

import (
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// ChunkMatch is one nearest-neighbor candidate from a vector search.
type ChunkMatch struct {
	ChunkID    string  `gorm:"column:chunk_id"`
	DocumentID string  `gorm:"column:document_id"`
	Content    string  `gorm:"column:content"`
	Distance   float64 `gorm:"column:distance"`
}

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// SearchNearest returns the k chunks closest to the query embedding by
// cosine distance (`<=>`), ascending. With a documentID the search is scoped
// to that document's chunks; otherwise it spans every document the user
// owns. Ownership scoping happens here, in the join, so chunk rows are never
// reachable across users.
func (r *ChunkRepository) SearchNearest(userID, documentID string, query pgvector.Vector, k int) ([]ChunkMatch, error) {
	if k <= 0 {
		k = 10
	}

	var matches []ChunkMatch
	var err error
	if documentID != "" {
		err = r.db.Raw(`
			SELECT c.id AS chunk_id, c.document_id, c.content,
			       c.embedding <=> ? AS distance
			FROM chunks c
			WHERE c.document_id = ?
			ORDER BY distance ASC
			LIMIT ?`, query, documentID, k).Scan(&matches).Error
	} else {
		err = r.db.Raw(`
			SELECT c.id AS chunk_id, c.document_id, c.content,
			       c.embedding <=> ? AS distance
			FROM chunks c
			INNER JOIN documents d ON d.id = c.document_id
			WHERE d.user_id = ?
			ORDER BY distance ASC
			LIMIT ?`, query, userID, k).Scan(&matches).Error
	}
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return matches, nil
}
