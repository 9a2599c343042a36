package repository

import (
	"context"

	operatordomain "github.com/smallbiznis/crudpark/internal/operator/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() operatordomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*operatordomain.Operator, error) {
	var op operatordomain.Operator
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, active, created_at FROM operators WHERE id = ?`,
		id,
	).Scan(&op).Error
	if err != nil {
		return nil, err
	}
	if op.ID == 0 {
		return nil, nil
	}
	return &op, nil
}

func (r *repo) FindActiveByName(ctx context.Context, db *gorm.DB, name string) (*operatordomain.Operator, error) {
	var op operatordomain.Operator
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, active, created_at
		 FROM operators
		 WHERE LOWER(name) = LOWER(?) AND active = TRUE
		 ORDER BY id ASC
		 LIMIT 1`,
		name,
	).Scan(&op).Error
	if err != nil {
		return nil, err
	}
	if op.ID == 0 {
		return nil, nil
	}
	return &op, nil
}
