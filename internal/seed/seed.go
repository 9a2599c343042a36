package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	operatordomain "github.com/smallbiznis/crudpark/internal/operator/domain"
	tariffdomain "github.com/smallbiznis/crudpark/internal/tariff/domain"
	"gorm.io/gorm"
)

const (
	defaultOperatorName = "admin"
	defaultTariffName   = "Standard"
	defaultGraceMinutes = 30
)

// EnsureDefaults seeds a first operator and tariff so a fresh install can
// open and close tickets. Existing rows are left untouched.
func EnsureDefaults(db *gorm.DB, nodeID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureOperatorTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureTariffTx(ctx, tx, node)
	})
}

func ensureOperatorTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var op operatordomain.Operator
	err := tx.WithContext(ctx).
		Where("LOWER(name) = ?", defaultOperatorName).
		First(&op).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	op = operatordomain.Operator{
		ID:        node.Generate().Int64(),
		Name:      defaultOperatorName,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&op).Error
}

func ensureTariffTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&tariffdomain.Tariff{}).Where("active = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	grace := defaultGraceMinutes
	tariff := tariffdomain.Tariff{
		ID:                node.Generate().Int64(),
		Name:              defaultTariffName,
		HourlyRate:        decimal.RequireFromString("4.00"),
		FractionSurcharge: decimal.RequireFromString("1.50"),
		DailyCap:          decimal.NewNullDecimal(decimal.RequireFromString("20.00")),
		GraceMinutes:      &grace,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return tx.WithContext(ctx).Create(&tariff).Error
}
