package receipt

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crudpark/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Printer emits ticket receipts. It is only called after the ticket change has
// committed, so an error here never affects stored state.
type Printer interface {
	PrintEntry(ctx context.Context, r EntryReceipt) error
	PrintExit(ctx context.Context, r ExitReceipt) error
}

type EntryReceipt struct {
	FacilityName string
	Folio        string
	Plate        string
	Kind         string
	EntryAt      time.Time
	OperatorName string
	Code         string
}

type ExitReceipt struct {
	FacilityName string
	Folio        string
	Plate        string
	Kind         string
	EntryAt      time.Time
	ExitAt       time.Time
	StayMinutes  int64
	OperatorName string
	Amount       decimal.Decimal
	// Method is empty when nothing was charged.
	Method string
}

type NoOpPrinter struct{}

func (NoOpPrinter) PrintEntry(context.Context, EntryReceipt) error { return nil }
func (NoOpPrinter) PrintExit(context.Context, ExitReceipt) error   { return nil }

var Module = fx.Module("receipt",
	fx.Provide(New),
)

func New(cfg config.ParkingConfig, log *zap.Logger) (Printer, error) {
	if !cfg.Receipt.Enabled {
		return NoOpPrinter{}, nil
	}
	return NewPDFPrinter(cfg.Receipt.Dir, log)
}
