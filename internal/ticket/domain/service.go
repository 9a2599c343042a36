package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	paymentdomain "github.com/smallbiznis/crudpark/internal/payment/domain"
	"github.com/smallbiznis/crudpark/pkg/db/pagination"
)

type Service interface {
	RegisterEntry(ctx context.Context, req EntryRequest) (*EntryResult, error)
	RegisterExit(ctx context.Context, req ExitRequest) (*ExitResult, error)
	RegisterManualPayment(ctx context.Context, req ManualPaymentRequest) (*ManualPaymentResult, error)
	GetByFolio(ctx context.Context, folio string) (*TicketDetail, error)
	ListOpen(ctx context.Context, req ListOpenRequest) (*ListOpenResponse, error)
}

type EntryRequest struct {
	Plate      string
	OperatorID int64
}

type ExitRequest struct {
	Plate      string
	OperatorID int64
	Method     string
}

type ManualPaymentRequest struct {
	Plate      string
	Amount     decimal.Decimal
	Method     string
	OperatorID int64
}

// EntryResult carries the committed ticket. ReceiptErr reports a failed
// receipt print; the ticket stays committed regardless.
type EntryResult struct {
	Ticket     Ticket
	ReceiptErr error
}

type ExitResult struct {
	Ticket        Ticket
	Charge        decimal.Decimal
	MinutesStayed int64
	// PaymentID is nil when nothing was charged.
	PaymentID  *snowflake.ID
	ReceiptErr error
}

type ManualPaymentResult struct {
	Recorded  bool
	Ticket    Ticket
	PaymentID snowflake.ID
}

type TicketDetail struct {
	Ticket   Ticket                  `json:"ticket"`
	Payments []paymentdomain.Payment `json:"payments"`
}

type ListOpenRequest struct {
	pagination.Pagination
}

type ListOpenResponse struct {
	Count    int64               `json:"count"`
	Tickets  []Ticket            `json:"tickets"`
	PageInfo pagination.PageInfo `json:"page_info"`
}
