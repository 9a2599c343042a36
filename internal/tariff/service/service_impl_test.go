package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crudpark/internal/config"
	"github.com/smallbiznis/crudpark/internal/migration/migrationtest"
	"github.com/smallbiznis/crudpark/internal/tariff/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const insertTariff = `INSERT INTO tariffs (id, name, hourly_rate, fraction_surcharge, daily_cap, grace_minutes, active, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func newService(t *testing.T, db *gorm.DB, ttl time.Duration) *Service {
	t.Helper()
	cfg := config.DefaultParkingConfig()
	cfg.Tariff.CacheTTL = ttl
	return New(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide(), Cfg: cfg}).(*Service)
}

func TestActivePicksNewestActiveTariff(t *testing.T) {
	db := migrationtest.Open(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	migrationtest.Exec(t, db, insertTariff, 1, "old", "3.00", "1.00", nil, 30, true, base, base)
	migrationtest.Exec(t, db, insertTariff, 2, "new", "4.00", "1.50", "20.00", 15, true, base.Add(time.Hour), base.Add(time.Hour))
	migrationtest.Exec(t, db, insertTariff, 3, "tie", "5.00", "2.00", nil, nil, true, base.Add(time.Hour), base.Add(time.Hour))
	migrationtest.Exec(t, db, insertTariff, 4, "inactive", "9.00", "9.00", nil, nil, false, base.Add(2*time.Hour), base.Add(2*time.Hour))

	svc := newService(t, db, 0)
	tariff, err := svc.Active(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tariff)

	assert.Equal(t, int64(3), tariff.ID, "ties on created_at break by highest id")
	assert.True(t, tariff.HourlyRate.Equal(decimal.RequireFromString("5.00")))
	assert.False(t, tariff.DailyCap.Valid)
	assert.Nil(t, tariff.GraceMinutes)
	assert.Equal(t, 30, tariff.Rule(30).GraceMinutes)
}

func TestActiveReturnsNilWithoutTariff(t *testing.T) {
	db := migrationtest.Open(t)
	svc := newService(t, db, time.Minute)

	tariff, err := svc.Active(context.Background())
	require.NoError(t, err)
	assert.Nil(t, tariff)
}

func TestActiveServesFromCache(t *testing.T) {
	db := migrationtest.Open(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	migrationtest.Exec(t, db, insertTariff, 1, "std", "4.00", "1.50", "20.00", 30, true, now, now)

	svc := newService(t, db, time.Minute)
	ctx := context.Background()

	first, err := svc.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)

	migrationtest.Exec(t, db, `UPDATE tariffs SET hourly_rate = '6.00' WHERE id = 1`)

	cached, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.True(t, cached.HourlyRate.Equal(decimal.RequireFromString("4.00")), "cached value served until expiry")
	assert.True(t, cached.DailyCap.Valid)
}
