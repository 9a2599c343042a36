package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crudpark/internal/clock"
	"github.com/smallbiznis/crudpark/internal/config"
	"github.com/smallbiznis/crudpark/internal/fee"
	"github.com/smallbiznis/crudpark/internal/observability/metrics"
	"github.com/smallbiznis/crudpark/internal/observability/tracing"
	operatordomain "github.com/smallbiznis/crudpark/internal/operator/domain"
	paymentdomain "github.com/smallbiznis/crudpark/internal/payment/domain"
	"github.com/smallbiznis/crudpark/internal/receipt"
	subscriptiondomain "github.com/smallbiznis/crudpark/internal/subscription/domain"
	tariffdomain "github.com/smallbiznis/crudpark/internal/tariff/domain"
	"github.com/smallbiznis/crudpark/internal/ticket/domain"
	"github.com/smallbiznis/crudpark/pkg/db"
	"github.com/smallbiznis/crudpark/pkg/db/pagination"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	exitPaymentNote   = "Automatic payment at exit - Stay: %d min"
	manualPaymentNote = "Manual payment recorded by operator"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	Subscriptions subscriptiondomain.Repository
	Payments      paymentdomain.Repository
	Operators     operatordomain.Repository
	Tariffs       tariffdomain.Provider
	Printer       receipt.Printer
	Cfg           config.ParkingConfig
	Metrics       *metrics.Metrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          domain.Repository
	subscriptions subscriptiondomain.Repository
	payments      paymentdomain.Repository
	operators     operatordomain.Repository
	tariffs       tariffdomain.Provider
	printer       receipt.Printer
	cfg           config.ParkingConfig
	loc           *time.Location
	metrics       *metrics.Metrics
	tracer        trace.Tracer
}

func New(p Params) domain.Service {
	printer := p.Printer
	if printer == nil {
		printer = receipt.NoOpPrinter{}
	}
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("ticket.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		subscriptions: p.Subscriptions,
		payments:      p.Payments,
		operators:     p.Operators,
		tariffs:       p.Tariffs,
		printer:       printer,
		cfg:           p.Cfg,
		loc:           p.Cfg.Ticket.Location(),
		metrics:       p.Metrics,
		tracer:        otel.Tracer("crudpark/ticket"),
	}
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Second)
}

func (s *Service) RegisterEntry(ctx context.Context, req domain.EntryRequest) (*domain.EntryResult, error) {
	ctx, span := s.tracer.Start(ctx, "ticket.RegisterEntry")
	defer span.End()

	plate, err := domain.NormalizePlate(req.Plate)
	if err != nil {
		return nil, s.fail(ctx, span, "register entry", err)
	}
	if req.OperatorID <= 0 {
		return nil, s.fail(ctx, span, "register entry", domain.ErrInvalidOperator)
	}

	now := s.now()
	day := subscriptiondomain.Day(now.In(s.loc))

	var created domain.Ticket
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		open, err := s.repo.FindOpenByPlate(ctx, tx, plate)
		if err != nil {
			return fmt.Errorf("find open ticket: %w", err)
		}
		if open != nil {
			return domain.ErrDuplicateOpenTicket.Withf("vehicle %s already has open ticket %s", plate, open.Folio)
		}

		sub, err := s.subscriptions.FindValidByPlate(ctx, tx, plate, day)
		if err != nil {
			return fmt.Errorf("find subscription: %w", err)
		}
		kind := domain.EntryKindGuest
		if sub != nil {
			kind = domain.EntryKindSubscription
		}

		n, err := s.repo.NextFolioNumber(ctx, tx)
		if err != nil {
			return fmt.Errorf("next folio: %w", err)
		}
		folio, err := domain.FormatFolio(n)
		if err != nil {
			return err
		}

		t := domain.Ticket{
			ID:              s.genID.Generate(),
			Folio:           folio,
			Plate:           plate,
			EntryKind:       kind,
			EntryAt:         now,
			EntryOperatorID: req.OperatorID,
			ChargedAmount:   decimal.Zero,
			Paid:            kind == domain.EntryKindSubscription,
			Active:          true,
			ReceiptCode:     domain.ReceiptCode(folio, plate, now),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.Insert(ctx, tx, &t); err != nil {
			if db.IsConstraint(err, "ux_tickets_open_plate", "tickets.plate") {
				return domain.ErrDuplicateOpenTicket.Withf("vehicle %s already has an open ticket", plate)
			}
			return fmt.Errorf("insert ticket: %w", err)
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, "register entry", err)
	}

	span.SetAttributes(tracing.SafeAttributes(
		attribute.String("folio", created.Folio),
		attribute.String("entry_kind", string(created.EntryKind)),
	)...)
	s.metrics.RecordTicketEntry(ctx, string(created.EntryKind))
	s.log.Info("ticket opened",
		zap.String("folio", created.Folio),
		zap.String("entry_kind", string(created.EntryKind)),
		zap.Int64("operator_id", created.EntryOperatorID),
	)

	result := &domain.EntryResult{Ticket: created}
	result.ReceiptErr = s.printEntry(ctx, created)
	return result, nil
}

func (s *Service) RegisterExit(ctx context.Context, req domain.ExitRequest) (*domain.ExitResult, error) {
	ctx, span := s.tracer.Start(ctx, "ticket.RegisterExit")
	defer span.End()

	plate, err := domain.NormalizePlate(req.Plate)
	if err != nil {
		return nil, s.fail(ctx, span, "register exit", err)
	}
	method, ok := paymentdomain.ParseMethod(req.Method)
	if !ok {
		return nil, s.fail(ctx, span, "register exit", domain.ErrInvalidPaymentMethod)
	}
	if req.OperatorID <= 0 {
		return nil, s.fail(ctx, span, "register exit", domain.ErrInvalidOperator)
	}

	t, err := s.repo.FindOpenByPlate(ctx, s.db, plate)
	if err != nil {
		return nil, s.fail(ctx, span, "register exit", fmt.Errorf("find open ticket: %w", err))
	}
	if t == nil {
		return nil, s.fail(ctx, span, "register exit", domain.ErrNoOpenTicket.Withf("no open ticket for vehicle %s", plate))
	}
	if t.ExitAt != nil {
		return nil, s.fail(ctx, span, "register exit", domain.ErrAlreadyClosed)
	}

	now := s.now()
	minutes := fee.ElapsedMinutes(t.EntryAt, now)
	charge := decimal.Zero
	if t.EntryKind != domain.EntryKindSubscription {
		tariff, err := s.tariffs.Active(ctx)
		if err != nil {
			return nil, s.fail(ctx, span, "register exit", err)
		}
		if tariff == nil {
			return nil, s.fail(ctx, span, "register exit", domain.ErrNoActiveTariff)
		}
		charge = fee.Calculate(t.EntryAt, now, tariff.Rule(s.cfg.Ticket.GraceMinutes))
	}

	var paymentID *snowflake.ID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		closed, err := s.repo.RecordExit(ctx, tx, t.ID, now, req.OperatorID, minutes)
		if err != nil {
			return fmt.Errorf("record exit: %w", err)
		}
		if !closed {
			return domain.ErrAlreadyClosed.Withf("ticket %s was closed by another operation", t.Folio)
		}

		if charge.IsPositive() {
			p := paymentdomain.Payment{
				ID:         s.genID.Generate(),
				TicketID:   t.ID,
				Amount:     charge,
				Method:     method,
				OperatorID: req.OperatorID,
				PaidAt:     now,
				Note:       fmt.Sprintf(exitPaymentNote, minutes),
			}
			if err := s.payments.Insert(ctx, tx, &p); err != nil {
				return fmt.Errorf("insert payment: %w", err)
			}
			paymentID = &p.ID
		}

		if err := s.repo.MarkPaid(ctx, tx, t.ID, charge, now); err != nil {
			return fmt.Errorf("mark paid: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, "register exit", err)
	}

	closed := *t
	operatorID := req.OperatorID
	closed.ExitAt = &now
	closed.ExitOperatorID = &operatorID
	closed.StayMinutes = &minutes
	closed.ChargedAmount = charge
	closed.Paid = true
	closed.UpdatedAt = now

	span.SetAttributes(tracing.SafeAttributes(
		attribute.String("folio", closed.Folio),
		attribute.Int64("stay_minutes", minutes),
		attribute.String("charge", charge.StringFixed(2)),
	)...)
	s.metrics.RecordTicketExit(ctx, string(closed.EntryKind))
	if paymentID != nil {
		s.metrics.RecordPayment(ctx, string(method), string(paymentdomain.SourceExit))
	}
	s.log.Info("ticket closed",
		zap.String("folio", closed.Folio),
		zap.Int64("stay_minutes", minutes),
		zap.String("charge", charge.StringFixed(2)),
		zap.Int64("operator_id", operatorID),
	)

	result := &domain.ExitResult{
		Ticket:        closed,
		Charge:        charge,
		MinutesStayed: minutes,
		PaymentID:     paymentID,
	}
	printedMethod := ""
	if paymentID != nil {
		printedMethod = string(method)
	}
	result.ReceiptErr = s.printExit(ctx, closed, printedMethod)
	return result, nil
}

// RegisterManualPayment settles an open guest ticket ahead of exit. The
// ticket stays open.
func (s *Service) RegisterManualPayment(ctx context.Context, req domain.ManualPaymentRequest) (*domain.ManualPaymentResult, error) {
	ctx, span := s.tracer.Start(ctx, "ticket.RegisterManualPayment")
	defer span.End()

	plate, err := domain.NormalizePlate(req.Plate)
	if err != nil {
		return nil, s.fail(ctx, span, "manual payment", err)
	}
	if !req.Amount.IsPositive() {
		return nil, s.fail(ctx, span, "manual payment", domain.ErrInvalidAmount)
	}
	amount := req.Amount.Round(2)
	if !amount.Equal(req.Amount) {
		return nil, s.fail(ctx, span, "manual payment",
			domain.ErrInvalidAmount.Withf("amount %s has more than two decimal places", req.Amount.String()))
	}
	method, ok := paymentdomain.ParseMethod(req.Method)
	if !ok {
		return nil, s.fail(ctx, span, "manual payment", domain.ErrInvalidPaymentMethod)
	}
	if req.OperatorID <= 0 {
		return nil, s.fail(ctx, span, "manual payment", domain.ErrInvalidOperator)
	}

	now := s.now()

	var (
		paid    domain.Ticket
		payment paymentdomain.Payment
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.repo.FindOpenByPlate(ctx, tx, plate)
		if err != nil {
			return fmt.Errorf("find open ticket: %w", err)
		}
		if t == nil {
			return domain.ErrNoOpenTicket.Withf("no open ticket for vehicle %s", plate)
		}
		if t.EntryKind == domain.EntryKindSubscription {
			return domain.ErrSubscriptionNoPaymentRequired
		}

		payment = paymentdomain.Payment{
			ID:         s.genID.Generate(),
			TicketID:   t.ID,
			Amount:     amount,
			Method:     method,
			OperatorID: req.OperatorID,
			PaidAt:     now,
			Note:       manualPaymentNote,
		}
		if err := s.payments.Insert(ctx, tx, &payment); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		if err := s.repo.MarkPaid(ctx, tx, t.ID, amount, now); err != nil {
			return fmt.Errorf("mark paid: %w", err)
		}

		paid = *t
		paid.ChargedAmount = amount
		paid.Paid = true
		paid.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, "manual payment", err)
	}

	s.metrics.RecordPayment(ctx, string(method), string(paymentdomain.SourceManual))
	s.log.Info("manual payment recorded",
		zap.String("folio", paid.Folio),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("method", string(method)),
		zap.Int64("operator_id", req.OperatorID),
	)

	return &domain.ManualPaymentResult{
		Recorded:  true,
		Ticket:    paid,
		PaymentID: payment.ID,
	}, nil
}

func (s *Service) GetByFolio(ctx context.Context, folio string) (*domain.TicketDetail, error) {
	folio = strings.ToUpper(strings.TrimSpace(folio))
	if _, ok := domain.ParseFolio(folio); !ok {
		return nil, domain.ErrTicketNotFound
	}

	t, err := s.repo.FindByFolio(ctx, s.db, folio)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrTicketNotFound
	}

	payments, err := s.payments.ListByTicket(ctx, s.db, t.ID)
	if err != nil {
		return nil, err
	}
	return &domain.TicketDetail{Ticket: *t, Payments: payments}, nil
}

func (s *Service) ListOpen(ctx context.Context, req domain.ListOpenRequest) (*domain.ListOpenResponse, error) {
	var after *domain.OpenCursor
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := decodeOpenCursor(token)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		after = cursor
	}

	count, err := s.repo.CountOpen(ctx, s.db)
	if err != nil {
		return nil, err
	}

	limit := req.Limit()
	items, err := s.repo.ListOpen(ctx, s.db, after, limit+1)
	if err != nil {
		return nil, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, limit, func(t domain.Ticket) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        t.ID.String(),
			CreatedAt: t.EntryAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if items == nil {
		items = []domain.Ticket{}
	}

	return &domain.ListOpenResponse{
		Count:    count,
		Tickets:  items,
		PageInfo: pageInfo,
	}, nil
}

func decodeOpenCursor(token string) (*domain.OpenCursor, error) {
	cursor, err := pagination.DecodeCursor(token)
	if err != nil {
		return nil, err
	}
	id, err := snowflake.ParseString(cursor.ID)
	if err != nil {
		return nil, err
	}
	entryAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.OpenCursor{EntryAt: entryAt.UTC(), ID: id}, nil
}

// fail records err on the span and in logs. Business errors are expected and
// logged at info; anything else is an infrastructure failure.
func (s *Service) fail(ctx context.Context, span trace.Span, op string, err error) error {
	if be, ok := domain.AsBusinessError(err); ok {
		span.SetAttributes(attribute.String("business_error", be.Code))
		s.metrics.RecordBusinessError(ctx, be.Code)
		s.log.Info(op+" rejected", zap.String("reason", be.Code), zap.String("message", be.Message))
		return err
	}

	if safe := tracing.SafeError(err); safe != nil {
		span.RecordError(safe)
	}
	span.SetStatus(codes.Error, op+" failed")
	s.log.Error(op+" failed", zap.Error(err))
	return err
}

func (s *Service) printContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if s.cfg.Receipt.Timeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, s.cfg.Receipt.Timeout)
}

func (s *Service) printEntry(ctx context.Context, t domain.Ticket) error {
	pctx, cancel := s.printContext(ctx)
	defer cancel()

	err := s.printer.PrintEntry(pctx, receipt.EntryReceipt{
		FacilityName: s.cfg.Receipt.FacilityName,
		Folio:        t.Folio,
		Plate:        t.Plate,
		Kind:         string(t.EntryKind),
		EntryAt:      t.EntryAt.In(s.loc),
		OperatorName: s.operatorName(pctx, t.EntryOperatorID),
		Code:         t.ReceiptCode,
	})
	if err != nil {
		s.metrics.RecordReceiptFailure(ctx, "entry")
		s.log.Warn("entry receipt failed", zap.String("folio", t.Folio), zap.Error(err))
	}
	return err
}

func (s *Service) printExit(ctx context.Context, t domain.Ticket, method string) error {
	pctx, cancel := s.printContext(ctx)
	defer cancel()

	var stay int64
	if t.StayMinutes != nil {
		stay = *t.StayMinutes
	}
	var exitAt time.Time
	if t.ExitAt != nil {
		exitAt = t.ExitAt.In(s.loc)
	}
	var operatorID int64
	if t.ExitOperatorID != nil {
		operatorID = *t.ExitOperatorID
	}

	err := s.printer.PrintExit(pctx, receipt.ExitReceipt{
		FacilityName: s.cfg.Receipt.FacilityName,
		Folio:        t.Folio,
		Plate:        t.Plate,
		Kind:         string(t.EntryKind),
		EntryAt:      t.EntryAt.In(s.loc),
		ExitAt:       exitAt,
		StayMinutes:  stay,
		OperatorName: s.operatorName(pctx, operatorID),
		Amount:       t.ChargedAmount,
		Method:       method,
	})
	if err != nil {
		s.metrics.RecordReceiptFailure(ctx, "exit")
		s.log.Warn("exit receipt failed", zap.String("folio", t.Folio), zap.Error(err))
	}
	return err
}

// operatorName is best effort; receipts print without a name on lookup failure.
func (s *Service) operatorName(ctx context.Context, id int64) string {
	if s.operators == nil || id <= 0 {
		return ""
	}
	op, err := s.operators.FindByID(ctx, s.db, id)
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			s.log.Debug("operator lookup for receipt failed", zap.Int64("operator_id", id), zap.Error(err))
		}
		return ""
	}
	if op == nil {
		return ""
	}
	return op.Name
}
