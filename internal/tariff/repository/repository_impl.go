package repository

import (
	"context"

	tariffdomain "github.com/smallbiznis/crudpark/internal/tariff/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() tariffdomain.Repository {
	return &repo{}
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB) (*tariffdomain.Tariff, error) {
	var t tariffdomain.Tariff
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, hourly_rate, fraction_surcharge, daily_cap, grace_minutes,
		 active, created_at, updated_at
		 FROM tariffs
		 WHERE active = TRUE
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}
