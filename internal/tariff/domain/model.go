package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crudpark/internal/fee"
	"gorm.io/gorm"
)

// Tariff is a pricing rule. Only the most recently created active tariff applies.
type Tariff struct {
	ID                int64               `json:"id" gorm:"primaryKey"`
	Name              string              `json:"name" gorm:"type:text;not null"`
	HourlyRate        decimal.Decimal     `json:"hourly_rate" gorm:"type:numeric(12,2);not null"`
	FractionSurcharge decimal.Decimal     `json:"fraction_surcharge" gorm:"type:numeric(12,2);not null"`
	DailyCap          decimal.NullDecimal `json:"daily_cap" gorm:"type:numeric(12,2)"`
	GraceMinutes      *int                `json:"grace_minutes,omitempty"`
	Active            bool                `json:"active" gorm:"not null;default:false"`
	CreatedAt         time.Time           `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time           `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Tariff) TableName() string { return "tariffs" }

// Rule converts the tariff into fee calculator input. defaultGrace is used
// when the tariff leaves its grace period unset.
func (t Tariff) Rule(defaultGrace int) fee.Rule {
	grace := defaultGrace
	if t.GraceMinutes != nil {
		grace = *t.GraceMinutes
	}
	return fee.Rule{
		HourlyRate:        t.HourlyRate,
		FractionSurcharge: t.FractionSurcharge,
		DailyCap:          t.DailyCap,
		GraceMinutes:      grace,
	}
}

type Repository interface {
	FindActive(ctx context.Context, db *gorm.DB) (*Tariff, error)
}

// Provider returns the tariff in force, or nil when none is active.
type Provider interface {
	Active(ctx context.Context) (*Tariff, error)
}
