package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Sallvainian/teaching-tools-api/internal/models"
)

// FileRepository reads file metadata for ownership checks.
type FileRepository struct {
	db *sqlx.DB
}

// NewFileRepository constructs the repository.
func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

// FindByID returns a file record by its ID.
func (r *FileRepository) FindByID(ctx context.Context, id string) (*models.FileRecord, error) {
	const query = `SELECT id, user_id, name, created_at FROM file_metadata WHERE id = $1`
	var file models.FileRecord
	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		return nil, err
	}
	return &file, nil
}
