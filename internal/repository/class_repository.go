package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Sallvainian/teaching-tools-api/internal/models"
)

// ClassRepository reads class rosters for permission resolution.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// ListClassIDsByStudent returns the IDs of classes the student belongs to.
func (r *ClassRepository) ListClassIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT class_id FROM class_students WHERE student_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, fmt.Errorf("list student classes: %w", err)
	}
	return ids, nil
}

// ListTaughtByTeacher returns classes taught by the teacher with roster counts.
func (r *ClassRepository) ListTaughtByTeacher(ctx context.Context, teacherID string) ([]models.ClassContext, error) {
	const query = `SELECT c.id, c.name, COUNT(cs.student_id) AS student_count
        FROM classes c
        LEFT JOIN class_students cs ON cs.class_id = c.id
        WHERE c.teacher_id = $1
        GROUP BY c.id, c.name
        ORDER BY c.name`
	var classes []models.ClassContext
	if err := r.db.SelectContext(ctx, &classes, query, teacherID); err != nil {
		return nil, fmt.Errorf("list taught classes: %w", err)
	}
	return classes, nil
}

// ListEnrolledByStudent returns classes the student is enrolled in. Roster
// counts are not exposed to students and stay zero.
func (r *ClassRepository) ListEnrolledByStudent(ctx context.Context, studentID string) ([]models.ClassContext, error) {
	const query = `SELECT c.id, c.name, 0 AS student_count
        FROM classes c
        JOIN class_students cs ON cs.class_id = c.id
        WHERE cs.student_id = $1
        ORDER BY c.name`
	var classes []models.ClassContext
	if err := r.db.SelectContext(ctx, &classes, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrolled classes: %w", err)
	}
	return classes, nil
}
