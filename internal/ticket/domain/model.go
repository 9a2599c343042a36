package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryKindSubscription EntryKind = "SUBSCRIPTION"
	EntryKindGuest        EntryKind = "GUEST"
)

const (
	FolioPrefix = "TKT"
	// MaxFolioNumber is the largest number that fits the six digit folio.
	MaxFolioNumber = 999999

	maxPlateLength = 16
)

// Ticket records one visit. It is open while ExitAt is nil.
type Ticket struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	Folio           string          `json:"folio" gorm:"type:text;not null;uniqueIndex"`
	Plate           string          `json:"plate" gorm:"type:text;not null"`
	EntryKind       EntryKind       `json:"entry_kind" gorm:"column:entry_kind;type:text;not null"`
	EntryAt         time.Time       `json:"entry_at" gorm:"column:entry_at;not null"`
	ExitAt          *time.Time      `json:"exit_at,omitempty" gorm:"column:exit_at"`
	EntryOperatorID int64           `json:"entry_operator_id" gorm:"column:entry_operator_id;not null"`
	ExitOperatorID  *int64          `json:"exit_operator_id,omitempty" gorm:"column:exit_operator_id"`
	StayMinutes     *int64          `json:"stay_minutes,omitempty" gorm:"column:stay_minutes"`
	ChargedAmount   decimal.Decimal `json:"charged_amount" gorm:"column:charged_amount;type:numeric(12,2);not null;default:0"`
	Paid            bool            `json:"paid" gorm:"not null;default:false"`
	Active          bool            `json:"active" gorm:"not null;default:true"`
	ReceiptCode     string          `json:"receipt_code" gorm:"column:receipt_code;type:text;not null"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"not null"`
}

func (Ticket) TableName() string { return "tickets" }

func (t Ticket) IsOpen() bool {
	return t.ExitAt == nil && t.Active
}

// NormalizePlate trims and upper-cases a plate.
func NormalizePlate(raw string) (string, error) {
	plate := strings.ToUpper(strings.TrimSpace(raw))
	if plate == "" {
		return "", ErrInvalidPlate
	}
	if utf8.RuneCountInString(plate) > maxPlateLength {
		return "", ErrInvalidPlate.Withf("plate exceeds %d characters", maxPlateLength)
	}
	return plate, nil
}

func FormatFolio(n int64) (string, error) {
	if n <= 0 || n > MaxFolioNumber {
		return "", fmt.Errorf("folio number %d out of range", n)
	}
	return fmt.Sprintf("%s%06d", FolioPrefix, n), nil
}

// ParseFolio returns the numeric suffix of a well-formed folio.
func ParseFolio(folio string) (int64, bool) {
	digits, ok := strings.CutPrefix(folio, FolioPrefix)
	if !ok || len(digits) != 6 {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ReceiptCode is the payload encoded in the entry receipt's QR code.
func ReceiptCode(folio, plate string, entryAt time.Time) string {
	return fmt.Sprintf("TICKET:%s|PLATE:%s|DATE:%d", folio, plate, entryAt.Unix())
}
