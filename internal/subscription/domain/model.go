package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Subscription is a date-bounded entitlement for a plate to park without a per-visit charge.
// Rows are maintained by facility administration and only read here.
type Subscription struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	OwnerName string    `json:"owner_name" gorm:"column:owner_name;type:text;not null"`
	Email     *string   `json:"email,omitempty" gorm:"type:text"`
	Plate     string    `json:"plate" gorm:"type:text;not null;index"`
	StartDate time.Time `json:"start_date" gorm:"type:date;not null"`
	EndDate   time.Time `json:"end_date" gorm:"type:date;not null"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Subscription) TableName() string { return "subscriptions" }

// ValidOn reports whether the subscription covers day, with both bounds inclusive.
func (s Subscription) ValidOn(day time.Time) bool {
	d := Day(day)
	return s.Active && !d.Before(Day(s.StartDate)) && !d.After(Day(s.EndDate))
}

// Day truncates t to its calendar date at UTC midnight, the form dates are stored in.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type Repository interface {
	FindValidByPlate(ctx context.Context, db *gorm.DB, plate string, day time.Time) (*Subscription, error)
}
