package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm translated", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "postgres", err: errors.New(`ERROR: duplicate key value violates unique constraint "ux_tickets_open_plate" (SQLSTATE 23505)`), want: true},
		{name: "sqlite", err: errors.New("constraint failed: UNIQUE constraint failed: tickets.plate (2067)"), want: true},
		{name: "other", err: errors.New("connection reset"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}

func TestIsConstraint(t *testing.T) {
	err := errors.New("constraint failed: UNIQUE constraint failed: tickets.plate (2067)")
	assert.True(t, IsConstraint(err, "ux_tickets_open_plate", "tickets.plate"))
	assert.False(t, IsConstraint(err, "ux_tickets_folio", "tickets.folio"))
}
