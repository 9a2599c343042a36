package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Operator is a booth attendant. The directory is read-only to ticket operations.
type Operator struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Email     *string   `json:"email,omitempty" gorm:"type:text"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Operator) TableName() string { return "operators" }

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Operator, error)
	FindActiveByName(ctx context.Context, db *gorm.DB, name string) (*Operator, error)
}

type Service interface {
	Login(ctx context.Context, name string) (*Operator, error)
	GetActive(ctx context.Context, id int64) (*Operator, error)
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidID        = errors.New("invalid_operator_id")
	ErrOperatorNotFound = errors.New("operator_not_found")
	ErrOperatorInactive = errors.New("operator_inactive")
)
