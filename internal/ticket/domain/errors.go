package domain

import (
	"errors"
	"fmt"
)

// BusinessError is an expected, operator-facing rejection. Operations that
// return one leave no writes behind.
type BusinessError struct {
	Code    string
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// Is matches on Code so detailed copies still match their sentinel.
func (e *BusinessError) Is(target error) bool {
	t, ok := target.(*BusinessError)
	return ok && t.Code == e.Code
}

// Withf returns a copy of e with a more specific message.
func (e *BusinessError) Withf(format string, args ...any) *BusinessError {
	return &BusinessError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) && be != nil {
		return be, true
	}
	return nil, false
}

func IsBusinessError(err error) bool {
	_, ok := AsBusinessError(err)
	return ok
}

var (
	ErrInvalidPlate                  = &BusinessError{Code: "invalid_plate", Message: "plate is required"}
	ErrInvalidOperator               = &BusinessError{Code: "invalid_operator", Message: "operator is required"}
	ErrInvalidPaymentMethod          = &BusinessError{Code: "invalid_payment_method", Message: "payment method must be Cash, Card or Transfer"}
	ErrInvalidAmount                 = &BusinessError{Code: "invalid_amount", Message: "amount must be greater than zero with at most two decimal places"}
	ErrDuplicateOpenTicket           = &BusinessError{Code: "duplicate_open_ticket", Message: "vehicle already has an open ticket"}
	ErrNoOpenTicket                  = &BusinessError{Code: "no_open_ticket", Message: "no open ticket for vehicle"}
	ErrAlreadyClosed                 = &BusinessError{Code: "already_closed", Message: "ticket is already closed"}
	ErrNoActiveTariff                = &BusinessError{Code: "no_active_tariff", Message: "no active tariff configured"}
	ErrSubscriptionNoPaymentRequired = &BusinessError{Code: "subscription_no_payment_required", Message: "subscription tickets require no payment"}
	ErrTicketNotFound                = &BusinessError{Code: "ticket_not_found", Message: "ticket not found"}
	ErrInvalidPageToken              = &BusinessError{Code: "invalid_page_token", Message: "page token is malformed"}
)
