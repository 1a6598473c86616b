package model

import (
	"time"

	"github.com/google/uuid"
)

// Parent owns one or more student profiles.
type Parent struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ParentRegisterRequest is the payload for creating a parent account.
type ParentRegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// ParentLoginRequest is the payload for parent authentication.
type ParentLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// ParentLoginResponse is returned after successful parent login.
type ParentLoginResponse struct {
	Token  string `json:"token"`
	Parent Parent `json:"parent"`
}
