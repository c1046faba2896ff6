package deliveries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/internal/orders"
	"github.com/distrigas/distrigas-backend/internal/payments"
	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
	"github.com/distrigas/distrigas-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AssignInput hands an order to a repartidor.
type AssignInput struct {
	OrderID          uuid.UUID
	DeliveryPersonID uuid.UUID
	ActorID          uuid.UUID
}

// StartInput marks an assigned delivery as on the road.
type StartInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
}

// CompleteInput closes a delivery at the customer's door.
type CompleteInput struct {
	OrderID          uuid.UUID
	ActorID          uuid.UUID
	ActorRole        enums.ActorRole
	CollectionMethod enums.CollectionMethod
	AmountCollected  decimal.Decimal
}

// ReportIssueInput flags a delivery that could not complete.
type ReportIssueInput struct {
	OrderID   uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.ActorRole
	Notes     string
}

// Service drives the delivery half of the order state machine.
type Service interface {
	Assign(ctx context.Context, input AssignInput) error
	Start(ctx context.Context, input StartInput) error
	Complete(ctx context.Context, input CompleteInput) error
	ReportIssue(ctx context.Context, input ReportIssueInput) error
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error)
}

type service struct {
	repo     Repository
	orders   orders.Repository
	payments payments.Service
	tx       txRunner
	metrics  *metrics.OrderMetrics
}

// ServiceParams bundles the delivery service dependencies.
type ServiceParams struct {
	Repo     Repository
	Orders   orders.Repository
	Payments payments.Service
	Tx       txRunner
	Metrics  *metrics.OrderMetrics
}

// NewService builds a delivery service. Metrics may be nil.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("deliveries repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments service required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     params.Repo,
		orders:   params.Orders,
		payments: params.Payments,
		tx:       params.Tx,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) Assign(ctx context.Context, input AssignInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.DeliveryPersonID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery person id required")
	}

	var fromStatus enums.OrderStatus

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.loadOrderForUpdate(ctx, tx, input.OrderID)
		if err != nil {
			return err
		}
		if order.OrderStatus != enums.OrderStatusPendingApproval &&
			order.OrderStatus != enums.OrderStatusPendingAssignment {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be assigned in current state").
				WithDetails(map[string]any{"order_status": order.OrderStatus})
		}
		fromStatus = order.OrderStatus

		repo := s.repo.WithTx(tx)
		employee, err := repo.FindEmployee(ctx, input.DeliveryPersonID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "delivery person not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
		}
		if !employee.Active {
			return pkgerrors.New(pkgerrors.CodeValidation, "delivery person is inactive")
		}
		if employee.Role != enums.ActorRoleRepartidor {
			return pkgerrors.New(pkgerrors.CodeValidation, "employee is not a repartidor")
		}

		now := time.Now().UTC()

		// reassignment reuses the existing 1:1 row
		existing, err := repo.FindByOrder(ctx, order.ID)
		switch {
		case err == nil:
			person := input.DeliveryPersonID
			if err := repo.Update(ctx, existing.ID, DeliveryPatch{
				DeliveryPersonID: &person,
				AssignedAt:       &now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := repo.Create(ctx, &models.Delivery{
				OrderID:          order.ID,
				DeliveryPersonID: input.DeliveryPersonID,
				AssignedAt:       now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
		}

		return s.patchStatus(ctx, tx, order.ID, enums.OrderStatusAssigned)
	})
	if err != nil {
		return err
	}

	s.metrics.ObserveTransition(fromStatus.String(), enums.OrderStatusAssigned.String())
	return nil
}

func (s *service) Start(ctx context.Context, input StartInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.loadOrderForUpdate(ctx, tx, input.OrderID)
		if err != nil {
			return err
		}
		if order.OrderStatus != enums.OrderStatusAssigned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not assigned").
				WithDetails(map[string]any{"order_status": order.OrderStatus})
		}

		delivery, err := s.loadDelivery(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if delivery.DeliveryPersonID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "delivery belongs to another repartidor")
		}

		now := time.Now().UTC()
		if err := s.repo.WithTx(tx).Update(ctx, delivery.ID, DeliveryPatch{
			DepartedAt: &now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery")
		}

		return s.patchStatus(ctx, tx, order.ID, enums.OrderStatusDelivering)
	})
	if err != nil {
		return err
	}

	s.metrics.ObserveTransition(enums.OrderStatusAssigned.String(), enums.OrderStatusDelivering.String())
	return nil
}

func (s *service) Complete(ctx context.Context, input CompleteInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.CollectionMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid collection method")
	}
	if input.AmountCollected.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "collected amount must not be negative")
	}

	var fromStatus enums.OrderStatus

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.loadOrderForUpdate(ctx, tx, input.OrderID)
		if err != nil {
			return err
		}
		if order.OrderStatus != enums.OrderStatusAssigned &&
			order.OrderStatus != enums.OrderStatusDelivering {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be completed in current state").
				WithDetails(map[string]any{"order_status": order.OrderStatus})
		}
		fromStatus = order.OrderStatus

		delivery, err := s.loadDelivery(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		// Admins may close out any delivery; repartidores only their own.
		if input.ActorRole != enums.ActorRoleAdmin && delivery.DeliveryPersonID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "delivery belongs to another repartidor")
		}

		now := time.Now().UTC()
		method := input.CollectionMethod
		amount := input.AmountCollected.Round(2)
		if err := s.repo.WithTx(tx).Update(ctx, delivery.ID, DeliveryPatch{
			CompletedAt:      &now,
			CollectionMethod: &method,
			AmountCollected:  &amount,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery")
		}

		if err := s.patchStatus(ctx, tx, order.ID, enums.OrderStatusDelivered); err != nil {
			return err
		}

		if method.SettlesImmediately() {
			return s.payments.SettleOnDelivery(ctx, tx, order, amount, method, input.ActorID)
		}

		scheduled := enums.PaymentStatusLatePaymentScheduled
		return s.orders.WithTx(tx).UpdateOrder(ctx, order.ID, orders.OrderPatch{
			PaymentStatus: &scheduled,
		})
	})
	if err != nil {
		return err
	}

	s.metrics.ObserveTransition(fromStatus.String(), enums.OrderStatusDelivered.String())
	return nil
}

func (s *service) ReportIssue(ctx context.Context, input ReportIssueInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(input.Notes) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "issue notes required")
	}

	var fromStatus enums.OrderStatus

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.loadOrderForUpdate(ctx, tx, input.OrderID)
		if err != nil {
			return err
		}
		if order.OrderStatus != enums.OrderStatusAssigned &&
			order.OrderStatus != enums.OrderStatusDelivering {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot report an issue in current state").
				WithDetails(map[string]any{"order_status": order.OrderStatus})
		}
		fromStatus = order.OrderStatus

		delivery, err := s.loadDelivery(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if input.ActorRole != enums.ActorRoleAdmin && delivery.DeliveryPersonID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "delivery belongs to another repartidor")
		}

		flag := true
		notes := input.Notes
		if err := s.repo.WithTx(tx).Update(ctx, delivery.ID, DeliveryPatch{
			IssueFlag:  &flag,
			IssueNotes: &notes,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery")
		}

		return s.patchStatus(ctx, tx, order.ID, enums.OrderStatusDeliveryIssue)
	})
	if err != nil {
		return err
	}

	s.metrics.ObserveTransition(fromStatus.String(), enums.OrderStatusDeliveryIssue.String())
	return nil
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	delivery, err := s.repo.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}
	return delivery, nil
}

func (s *service) loadOrderForUpdate(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.WithTx(tx).FindOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) loadDelivery(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Delivery, error) {
	delivery, err := s.repo.WithTx(tx).FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}
	return delivery, nil
}

func (s *service) patchStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, status enums.OrderStatus) error {
	if err := s.orders.WithTx(tx).UpdateOrder(ctx, orderID, orders.OrderPatch{
		OrderStatus: &status,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	return nil
}
