package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/smallbiznis/crudpark/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() paymentdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *paymentdomain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (id, ticket_id, amount, method, operator_id, paid_at, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.TicketID,
		p.Amount,
		p.Method,
		p.OperatorID,
		p.PaidAt,
		p.Note,
	).Error
}

func (r *repo) ListByTicket(ctx context.Context, db *gorm.DB, ticketID snowflake.ID) ([]paymentdomain.Payment, error) {
	var items []paymentdomain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, ticket_id, amount, method, operator_id, paid_at, note
		 FROM payments WHERE ticket_id = ? ORDER BY paid_at ASC, id ASC`,
		ticketID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
