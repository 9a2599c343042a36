package domain

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Method string

const (
	MethodCash     Method = "Cash"
	MethodCard     Method = "Card"
	MethodTransfer Method = "Transfer"
)

// ParseMethod matches raw against the recognized methods, ignoring case and surrounding space.
func ParseMethod(raw string) (Method, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cash":
		return MethodCash, true
	case "card":
		return MethodCard, true
	case "transfer":
		return MethodTransfer, true
	default:
		return "", false
	}
}

type Source string

const (
	SourceExit   Source = "exit"
	SourceManual Source = "manual"
)

type Payment struct {
	ID         snowflake.ID    `json:"id" gorm:"primaryKey"`
	TicketID   snowflake.ID    `json:"ticket_id" gorm:"column:ticket_id;not null;index"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Method     Method          `json:"method" gorm:"type:text;not null"`
	OperatorID int64           `json:"operator_id" gorm:"column:operator_id;not null"`
	PaidAt     time.Time       `json:"paid_at" gorm:"column:paid_at;not null"`
	Note       string          `json:"note,omitempty" gorm:"type:text"`
}

func (Payment) TableName() string { return "payments" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	ListByTicket(ctx context.Context, db *gorm.DB, ticketID snowflake.ID) ([]Payment, error)
}
