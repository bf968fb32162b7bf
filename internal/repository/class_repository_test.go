package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassRepositoryListClassIDsByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT class_id FROM class_students WHERE student_id = $1")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"class_id"}).AddRow("c1").AddRow("c2"))

	ids, err := repo.ListClassIDsByStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListTaughtByTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "student_count"}).
		AddRow("c1", "Physics", 24).
		AddRow("c2", "Chemistry", 18)
	mock.ExpectQuery("LEFT JOIN class_students cs ON cs.class_id = c.id").
		WithArgs("t1").
		WillReturnRows(rows)

	classes, err := repo.ListTaughtByTeacher(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "Physics", classes[0].Name)
	assert.Equal(t, 24, classes[0].StudentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListEnrolledByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "student_count"}).
		AddRow("c1", "History", 0)
	mock.ExpectQuery("JOIN class_students cs ON cs.class_id = c.id").
		WithArgs("s1").
		WillReturnRows(rows)

	classes, err := repo.ListEnrolledByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, 0, classes[0].StudentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
