package repository

import (
	"context"
	"time"

	subscriptiondomain "github.com/smallbiznis/crudpark/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() subscriptiondomain.Repository {
	return &repo{}
}

const (
	findValidPostgres = `SELECT id, owner_name, email, plate, start_date, end_date, active, created_at
		 FROM subscriptions
		 WHERE plate = ? AND active = TRUE
		   AND start_date <= CAST(? AS DATE) AND end_date >= CAST(? AS DATE)
		 ORDER BY end_date DESC, id DESC
		 LIMIT 1`

	// SQLite keeps DATE columns as text, either plain or with a time part.
	findValidSQLite = `SELECT id, owner_name, email, plate, start_date, end_date, active, created_at
		 FROM subscriptions
		 WHERE plate = ? AND active = TRUE
		   AND date(start_date) <= date(?) AND date(end_date) >= date(?)
		 ORDER BY date(end_date) DESC, id DESC
		 LIMIT 1`
)

// FindValidByPlate compares calendar dates only. Both ends of the period are
// inclusive.
func (r *repo) FindValidByPlate(ctx context.Context, db *gorm.DB, plate string, day time.Time) (*subscriptiondomain.Subscription, error) {
	d := subscriptiondomain.Day(day).Format(time.DateOnly)

	query := findValidPostgres
	if db.Dialector.Name() == "sqlite" {
		query = findValidSQLite
	}

	var s subscriptiondomain.Subscription
	err := db.WithContext(ctx).Raw(query, plate, d, d).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}
