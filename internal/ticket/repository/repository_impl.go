package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ticketdomain "github.com/smallbiznis/crudpark/internal/ticket/domain"
	"gorm.io/gorm"
)

const folioSequenceName = "ticket"

const ticketColumns = `id, folio, plate, entry_kind, entry_at, exit_at, entry_operator_id,
	exit_operator_id, stay_minutes, charged_amount, paid, active, receipt_code,
	created_at, updated_at`

type repo struct{}

func Provide() ticketdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, t *ticketdomain.Ticket) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tickets (`+ticketColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Folio,
		t.Plate,
		t.EntryKind,
		t.EntryAt,
		t.ExitAt,
		t.EntryOperatorID,
		t.ExitOperatorID,
		t.StayMinutes,
		t.ChargedAmount,
		t.Paid,
		t.Active,
		t.ReceiptCode,
		t.CreatedAt,
		t.UpdatedAt,
	).Error
}

func (r *repo) FindOpenByPlate(ctx context.Context, db *gorm.DB, plate string) (*ticketdomain.Ticket, error) {
	var t ticketdomain.Ticket
	err := db.WithContext(ctx).Raw(
		`SELECT `+ticketColumns+`
		 FROM tickets
		 WHERE plate = ? AND exit_at IS NULL AND active = TRUE
		 ORDER BY entry_at DESC, id DESC
		 LIMIT 1`,
		plate,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) FindByFolio(ctx context.Context, db *gorm.DB, folio string) (*ticketdomain.Ticket, error) {
	var t ticketdomain.Ticket
	err := db.WithContext(ctx).Raw(
		`SELECT `+ticketColumns+` FROM tickets WHERE folio = ?`,
		folio,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

// NextFolioNumber bumps the counter row, which holds its lock until the
// surrounding transaction ends. A rolled back entry releases its number.
func (r *repo) NextFolioNumber(ctx context.Context, db *gorm.DB) (int64, error) {
	var next int64
	err := db.WithContext(ctx).Raw(
		`UPDATE ticket_folio_sequence
		 SET last_value = last_value + 1
		 WHERE name = ?
		 RETURNING last_value`,
		folioSequenceName,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	if next > 0 {
		return next, nil
	}
	return r.initFolioSequence(ctx, db)
}

// initFolioSequence seeds a missing counter from the highest folio on record.
func (r *repo) initFolioSequence(ctx context.Context, db *gorm.DB) (int64, error) {
	var folios []string
	err := db.WithContext(ctx).Raw(
		`SELECT folio FROM tickets WHERE folio LIKE ?`,
		ticketdomain.FolioPrefix+"%",
	).Scan(&folios).Error
	if err != nil {
		return 0, err
	}

	var highest int64
	for _, folio := range folios {
		if n, ok := ticketdomain.ParseFolio(folio); ok && n > highest {
			highest = n
		}
	}

	// A concurrent rebuild may have recreated the row first; take the next value after it.
	var next int64
	err = db.WithContext(ctx).Raw(
		`INSERT INTO ticket_folio_sequence (name, last_value) VALUES (?, ?)
		 ON CONFLICT (name) DO UPDATE SET last_value = ticket_folio_sequence.last_value + 1
		 RETURNING last_value`,
		folioSequenceName,
		highest+1,
	).Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("init folio sequence: %w", err)
	}
	return next, nil
}

func (r *repo) RecordExit(ctx context.Context, db *gorm.DB, id snowflake.ID, exitAt time.Time, operatorID int64, stayMinutes int64) (bool, error) {
	if stayMinutes < 0 {
		return false, errors.New("stay minutes cannot be negative")
	}
	result := db.WithContext(ctx).Exec(
		`UPDATE tickets
		 SET exit_at = ?, exit_operator_id = ?, stay_minutes = ?, updated_at = ?
		 WHERE id = ? AND exit_at IS NULL`,
		exitAt,
		operatorID,
		stayMinutes,
		exitAt,
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, amount decimal.Decimal, at time.Time) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE tickets SET charged_amount = ?, paid = TRUE, updated_at = ? WHERE id = ?`,
		amount,
		at,
		id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) CountOpen(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM tickets WHERE exit_at IS NULL AND active = TRUE`,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) ListOpen(ctx context.Context, db *gorm.DB, after *ticketdomain.OpenCursor, limit int) ([]ticketdomain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE exit_at IS NULL AND active = TRUE`
	args := []any{}
	if after != nil {
		query += ` AND (entry_at > ? OR (entry_at = ? AND id > ?))`
		args = append(args, after.EntryAt, after.EntryAt, after.ID)
	}
	query += ` ORDER BY entry_at ASC, id ASC LIMIT ?`
	args = append(args, limit)

	var items []ticketdomain.Ticket
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
