package repository

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/crudpark/internal/migration/migrationtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFindValidByPlate(t *testing.T) {
	db := migrationtest.Open(t)
	ctx := context.Background()
	r := Provide()

	insert := `INSERT INTO subscriptions (id, owner_name, plate, start_date, end_date, active) VALUES (?, ?, ?, ?, ?, ?)`
	migrationtest.Exec(t, db, insert, 1, "Laura", "ABC123", date(2024, 3, 1), date(2024, 3, 31), true)
	migrationtest.Exec(t, db, insert, 2, "Pedro", "XYZ999", date(2024, 3, 1), date(2024, 3, 31), false)

	cases := []struct {
		name  string
		plate string
		day   time.Time
		found bool
	}{
		{name: "first day inclusive", plate: "ABC123", day: date(2024, 3, 1), found: true},
		{name: "last day inclusive", plate: "ABC123", day: time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC), found: true},
		{name: "before start", plate: "ABC123", day: date(2024, 2, 29), found: false},
		{name: "after end", plate: "ABC123", day: date(2024, 4, 1), found: false},
		{name: "inactive", plate: "XYZ999", day: date(2024, 3, 15), found: false},
		{name: "unknown plate", plate: "NOPE00", day: date(2024, 3, 15), found: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub, err := r.FindValidByPlate(ctx, db, tc.plate, tc.day)
			require.NoError(t, err)
			if tc.found {
				require.NotNil(t, sub)
				assert.Equal(t, tc.plate, sub.Plate)
				assert.True(t, sub.ValidOn(tc.day))
			} else {
				assert.Nil(t, sub)
			}
		})
	}
}

func TestFindValidByPlatePlainDateColumns(t *testing.T) {
	db := migrationtest.Open(t)
	ctx := context.Background()
	r := Provide()

	migrationtest.Exec(t, db,
		`INSERT INTO subscriptions (id, owner_name, plate, start_date, end_date, active) VALUES (1, 'Marta', 'SUB001', '2024-03-01', '2024-03-15', TRUE)`)

	cases := []struct {
		name  string
		day   time.Time
		found bool
	}{
		{name: "start day", day: time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC), found: true},
		{name: "end day", day: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), found: true},
		{name: "end day late", day: time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC), found: true},
		{name: "day after end", day: date(2024, 3, 16), found: false},
		{name: "day before start", day: time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC), found: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub, err := r.FindValidByPlate(ctx, db, "SUB001", tc.day)
			require.NoError(t, err)
			if tc.found {
				require.NotNil(t, sub)
				assert.Equal(t, "Marta", sub.OwnerName)
			} else {
				assert.Nil(t, sub)
			}
		})
	}
}
