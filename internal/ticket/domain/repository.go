package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OpenCursor positions a page of open tickets ordered by entry time then id.
type OpenCursor struct {
	EntryAt time.Time
	ID      snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, ticket *Ticket) error
	FindOpenByPlate(ctx context.Context, db *gorm.DB, plate string) (*Ticket, error)
	FindByFolio(ctx context.Context, db *gorm.DB, folio string) (*Ticket, error)
	// NextFolioNumber atomically reserves the next folio number. It must run
	// inside the transaction that inserts the ticket.
	NextFolioNumber(ctx context.Context, db *gorm.DB) (int64, error)
	// RecordExit closes an open ticket. It reports false when the ticket was
	// already closed by a concurrent operation.
	RecordExit(ctx context.Context, db *gorm.DB, id snowflake.ID, exitAt time.Time, operatorID int64, stayMinutes int64) (bool, error)
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, amount decimal.Decimal, at time.Time) error
	CountOpen(ctx context.Context, db *gorm.DB) (int64, error)
	ListOpen(ctx context.Context, db *gorm.DB, after *OpenCursor, limit int) ([]Ticket, error)
}
