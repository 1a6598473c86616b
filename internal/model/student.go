package model

import (
	"time"

	"github.com/google/uuid"
)

// Student is a child profile managed by a parent account. The exam engine
// treats it as a read-mostly input and mutates only the XP field, which is
// monotonically non-decreasing.
type Student struct {
	ID           uuid.UUID  `json:"id"`
	ParentID     uuid.UUID  `json:"parent_id"`
	Name         string     `json:"name"`
	Level        GradeLevel `json:"level"`
	School       string     `json:"school,omitempty"`
	XP           int        `json:"xp"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Password  string `json:"password" binding:"required,min=4,max=128"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}

// CreateStudentRequest is the payload for creating a child profile.
type CreateStudentRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Level    string `json:"level" binding:"required,grade"`
	School   string `json:"school" binding:"omitempty,max=200"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}
