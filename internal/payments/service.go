package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bawasa/bawasa-backend/pkg/db"
	"github.com/bawasa/bawasa-backend/pkg/db/models"
	"github.com/bawasa/bawasa-backend/pkg/enums"
	pkgerrors "github.com/bawasa/bawasa-backend/pkg/errors"
	pkgpagination "github.com/bawasa/bawasa-backend/pkg/pagination"
)

// PaymentStore is the transactional surface of the payment repository.
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	TotalPaid(ctx context.Context, billID uuid.UUID) (decimal.Decimal, error)
}

// BillStore is the slice of the bill repository a payment needs: load the
// bill being settled and move its status forward.
type BillStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BillStatus) error
}

type paymentsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	List(ctx context.Context, opts listQuery) ([]models.Payment, error)
}

// TxRunner executes fn inside a single transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RecordInput is a cashier collection request.
type RecordInput struct {
	BillID   string `json:"billId" validate:"required"`
	Amount   string `json:"amount" validate:"required"`
	Method   string `json:"method" validate:"required"`
	ORNumber string `json:"orNumber" validate:"required"`
}

// RecordResult is the stored payment plus the bill status it produced.
type RecordResult struct {
	Payment    *models.Payment  `json:"payment"`
	BillStatus enums.BillStatus `json:"bill_status"`
	Balance    decimal.Decimal  `json:"balance"`
}

// ListParams selects a payment page.
type ListParams struct {
	BillID    string
	CashierID string
	Day       string
	Limit     int
	Cursor    string
}

// ListResult is one page of payments.
type ListResult struct {
	Items      []models.Payment `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// Service records and lists cashier collections.
type Service interface {
	Record(ctx context.Context, cashierID uuid.UUID, input RecordInput) (*RecordResult, error)
	Get(ctx context.Context, rawID string) (*models.Payment, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	tx       TxRunner
	repo     paymentsRepository
	payments func(tx *gorm.DB) PaymentStore
	bills    func(tx *gorm.DB) BillStore
	now      func() time.Time
}

// NewService builds the payments service. Factories bind tx-scoped stores so
// the payment insert and the bill status transition commit or roll back
// together.
func NewService(
	tx TxRunner,
	repo paymentsRepository,
	paymentFactory func(tx *gorm.DB) PaymentStore,
	billFactory func(tx *gorm.DB) BillStore,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if paymentFactory == nil || billFactory == nil {
		return nil, fmt.Errorf("store factories required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		payments: paymentFactory,
		bills:    billFactory,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Record(ctx context.Context, cashierID uuid.UUID, input RecordInput) (*RecordResult, error) {
	billID, amount, method, orNumber, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	if cashierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "cashier identity missing")
	}

	var result *RecordResult
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		payments := s.payments(tx)
		bills := s.bills(tx)

		bill, err := bills.FindByID(ctx, billID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "lookup bill")
		}
		if !bill.Status.IsSettleable() {
			return pkgerrors.New(pkgerrors.CodeConflict, "bill already settled")
		}

		paid, err := payments.TotalPaid(ctx, billID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "sum prior payments")
		}
		remaining := bill.Amount.Sub(paid)
		if amount.GreaterThan(remaining) {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("amount exceeds remaining balance of %s", remaining.StringFixed(2)))
		}

		created, err := payments.Create(ctx, &models.Payment{
			BillID:     billID,
			ConsumerID: bill.ConsumerID,
			CashierID:  cashierID,
			Amount:     amount,
			Method:     method,
			ORNumber:   orNumber,
			CreatedAt:  s.now(),
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "OR number already used")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "insert payment")
		}

		balance := remaining.Sub(amount)
		status := enums.BillStatusPartial
		if balance.IsZero() {
			status = enums.BillStatusPaid
		}
		if err := bills.UpdateStatus(ctx, billID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "update bill status")
		}

		result = &RecordResult{Payment: created, BillStatus: status, Balance: balance}
		return nil
	})
	if txErr != nil {
		if typed := pkgerrors.As(txErr); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, txErr, "payment transaction")
	}
	return result, nil
}

func (s *service) validate(input RecordInput) (uuid.UUID, decimal.Decimal, enums.PaymentMethod, string, error) {
	fail := func(msg string) (uuid.UUID, decimal.Decimal, enums.PaymentMethod, string, error) {
		return uuid.Nil, decimal.Zero, "", "", pkgerrors.New(pkgerrors.CodeValidation, msg)
	}

	raw := strings.TrimSpace(input.BillID)
	if raw == "" {
		return fail("billId is required")
	}
	billID, err := uuid.Parse(raw)
	if err != nil {
		return fail("billId must be a UUID")
	}

	if strings.TrimSpace(input.Amount) == "" {
		return fail("amount is required")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(input.Amount))
	if err != nil {
		return fail("amount must be a decimal number")
	}
	if !amount.IsPositive() {
		return fail("amount must be greater than zero")
	}
	amount = amount.Round(2)

	method, err := enums.ParsePaymentMethod(strings.TrimSpace(input.Method))
	if err != nil {
		return fail("method must be one of cash, check, gcash")
	}

	orNumber := strings.TrimSpace(input.ORNumber)
	if orNumber == "" {
		return fail("orNumber is required")
	}

	return billID, amount, method, orNumber, nil
}

func (s *service) Get(ctx context.Context, rawID string) (*models.Payment, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paymentId must be a UUID")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "lookup payment")
	}
	return row, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listQuery{limit: pkgpagination.LimitWithBuffer(params.Limit)}

	if raw := strings.TrimSpace(params.BillID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "billId must be a UUID")
		}
		query.billID = id
	}
	if raw := strings.TrimSpace(params.CashierID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashierId must be a UUID")
		}
		query.cashierID = id
	}
	if raw := strings.TrimSpace(params.Day); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "day must use the YYYY-MM-DD format")
		}
		query.from = day
		query.to = day.AddDate(0, 0, 1)
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list payments")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	result := &ListResult{}
	if len(rows) > limit {
		result.NextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}
	result.Items = rows
	return result, nil
}
