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

	"github.com/distrigas/distrigas-backend/internal/loyalty"
	"github.com/distrigas/distrigas-backend/internal/orders"
	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
	"github.com/distrigas/distrigas-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SubmitInput records a payment proof against an order. ProofRef is the opaque
// reference handed back by the upload collaborator.
type SubmitInput struct {
	OrderID   uuid.UUID
	Amount    decimal.Decimal
	Method    enums.CollectionMethod
	ProofRef  *string
	ActorID   uuid.UUID
	ActorRole enums.ActorRole
}

// VerifyDecision is the contador's call on one submitted payment.
type VerifyDecision string

const (
	VerifyDecisionApprove VerifyDecision = "approve"
	VerifyDecisionReject  VerifyDecision = "reject"
)

// VerifyInput carries one verification decision.
type VerifyInput struct {
	PaymentID    uuid.UUID
	Decision     VerifyDecision
	RejectReason *string
	ActorID      uuid.UUID
}

// Service owns payment rows and the payment_status axis of every order. The
// transition into paid credits the order's earned points exactly once.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Payment, error)
	Verify(ctx context.Context, input VerifyInput) error
	ListByOrder(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, role enums.ActorRole) ([]models.Payment, error)
	// SettleOnDelivery runs inside the delivery-completion transaction: it
	// records the collected payment (already settled) and moves the order
	// straight to paid.
	SettleOnDelivery(ctx context.Context, tx *gorm.DB, order *models.Order, amount decimal.Decimal, method enums.CollectionMethod, collectorID uuid.UUID) error
}

type service struct {
	repo    Repository
	orders  orders.Repository
	tx      txRunner
	ledger  loyalty.Service
	metrics *metrics.PaymentMetrics
}

// ServiceParams bundles the payment service dependencies.
type ServiceParams struct {
	Repo    Repository
	Orders  orders.Repository
	Tx      txRunner
	Ledger  loyalty.Service
	Metrics *metrics.PaymentMetrics
}

// NewService builds a payment service. Metrics may be nil.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("loyalty service required")
	}
	return &service{
		repo:    params.Repo,
		orders:  params.Orders,
		tx:      params.Tx,
		ledger:  params.Ledger,
		metrics: params.Metrics,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Payment, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid collection method")
	}

	var payment *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.WithTx(tx).FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if input.ActorRole == enums.ActorRoleCliente && order.CustomerID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
		if order.OrderStatus == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is cancelled")
		}

		payment = &models.Payment{
			OrderID:  order.ID,
			Amount:   input.Amount.Round(2),
			Method:   input.Method,
			ProofRef: input.ProofRef,
			Status:   enums.VerificationStatusUnverified,
		}
		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncSubmitted(input.Method.String())
	return payment, nil
}

func (s *service) Verify(ctx context.Context, input VerifyInput) error {
	if input.PaymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if input.Decision != VerifyDecisionApprove && input.Decision != VerifyDecisionReject {
		return pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}
	if input.Decision == VerifyDecisionReject && (input.RejectReason == nil || strings.TrimSpace(*input.RejectReason) == "") {
		return pkgerrors.New(pkgerrors.CodeValidation, "reject reason required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payment, err := repo.FindForUpdate(ctx, input.PaymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}
		if payment.Status != enums.VerificationStatusUnverified {
			return pkgerrors.New(pkgerrors.CodeAlreadyVerified, "payment already verified").
				WithDetails(map[string]any{"status": payment.Status})
		}

		now := time.Now().UTC()
		actorID := input.ActorID

		if input.Decision == VerifyDecisionReject {
			rejected := enums.VerificationStatusRejected
			return repo.Update(ctx, payment.ID, PaymentPatch{
				Status:       &rejected,
				VerifiedByID: &actorID,
				VerifiedAt:   &now,
				RejectReason: input.RejectReason,
			})
		}

		approved := enums.VerificationStatusApproved
		if err := repo.Update(ctx, payment.ID, PaymentPatch{
			Status:       &approved,
			VerifiedByID: &actorID,
			VerifiedAt:   &now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve payment")
		}

		order, err := s.orders.WithTx(tx).FindOrderForUpdate(ctx, payment.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		return s.recomputePaymentStatus(ctx, tx, order)
	})
	if err != nil {
		return err
	}

	s.metrics.IncVerified(string(input.Decision))
	return nil
}

// recomputePaymentStatus derives the order's payment_status from the sum of
// approved payments and applies the points credit on the transition into paid.
func (s *service) recomputePaymentStatus(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	sum, err := s.repo.WithTx(tx).SumApproved(ctx, order.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum approved payments")
	}

	status := enums.PaymentStatusPending
	switch {
	case sum.GreaterThanOrEqual(order.Total):
		status = enums.PaymentStatusPaid
	case sum.IsPositive():
		status = enums.PaymentStatusPartiallyPaid
	}

	if status == order.PaymentStatus {
		return nil
	}

	if err := s.orders.WithTx(tx).UpdateOrder(ctx, order.ID, orders.OrderPatch{
		PaymentStatus: &status,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
	}

	if status == enums.PaymentStatusPaid {
		return s.creditEarnedPoints(ctx, tx, order)
	}
	return nil
}

// creditEarnedPoints applies the order's pending accrual to the cached
// balance. The applied-entry check keeps it a once-only event even when an
// order re-enters paid.
func (s *service) creditEarnedPoints(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if order.PointsEarned <= 0 {
		return nil
	}

	applied, err := s.ledger.HasAppliedEntry(ctx, tx, order.ID, enums.LoyaltyReasonPurchaseEarn)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	_, err = s.ledger.Append(ctx, tx, loyalty.AppendInput{
		CustomerID: order.CustomerID,
		Delta:      order.PointsEarned,
		Reason:     enums.LoyaltyReasonPurchaseEarn,
		OrderID:    &order.ID,
	})
	return err
}

func (s *service) SettleOnDelivery(ctx context.Context, tx *gorm.DB, order *models.Order, amount decimal.Decimal, method enums.CollectionMethod, collectorID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for settlement")
	}
	if !method.SettlesImmediately() {
		return pkgerrors.New(pkgerrors.CodeValidation, "method does not settle on delivery")
	}

	if amount.IsPositive() {
		now := time.Now().UTC()
		collector := collectorID
		approved := enums.VerificationStatusApproved
		payment := &models.Payment{
			OrderID:      order.ID,
			Amount:       amount.Round(2),
			Method:       method,
			Status:       approved,
			VerifiedByID: &collector,
			VerifiedAt:   &now,
		}
		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist collected payment")
		}
	}

	paid := enums.PaymentStatusPaid
	if err := s.orders.WithTx(tx).UpdateOrder(ctx, order.ID, orders.OrderPatch{
		PaymentStatus: &paid,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
	}

	return s.creditEarnedPoints(ctx, tx, order)
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, role enums.ActorRole) ([]models.Payment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if role == enums.ActorRoleCliente && order.CustomerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}

	rows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return rows, nil
}
