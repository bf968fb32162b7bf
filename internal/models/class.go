package models

import "time"

// Class represents a row in the classes table.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ClassStudent links a student to a class roster.
type ClassStudent struct {
	ClassID   string `db:"class_id" json:"class_id"`
	StudentID string `db:"student_id" json:"student_id"`
}

// ClassContext is a class as seen by the sharing UI. Teachers get the
// classes they teach with roster counts; students get the classes they are
// enrolled in with the count fixed to zero.
type ClassContext struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	StudentCount int    `db:"student_count" json:"student_count"`
}
