package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/internal/inventory"
	"github.com/distrigas/distrigas-backend/internal/loyalty"
	"github.com/distrigas/distrigas-backend/internal/pricing"
	"github.com/distrigas/distrigas-backend/internal/settings"
	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
	"github.com/distrigas/distrigas-backend/pkg/metrics"
	"github.com/distrigas/distrigas-backend/pkg/pagination"
)

// Service is the order engine: creation, cancellation and reads.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	Cancel(ctx context.Context, input CancelOrderInput) error
	Get(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, role enums.ActorRole) (*models.Order, error)
	List(ctx context.Context, query ListOrdersQuery) (*ListOrdersResult, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	pricing  pricing.Resolver
	stock    StockMutator
	ledger   LedgerAppender
	settings settings.Service
	metrics  *metrics.OrderMetrics
}

// ServiceParams bundles the order engine dependencies.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Pricing  pricing.Resolver
	Stock    StockMutator
	Ledger   LedgerAppender
	Settings settings.Service
	Metrics  *metrics.OrderMetrics
}

// NewService builds the order engine with the required dependencies. Metrics
// may be nil.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Pricing == nil {
		return nil, fmt.Errorf("pricing resolver required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock mutator required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger appender required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings service required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		pricing:  params.Pricing,
		stock:    params.Stock,
		ledger:   params.Ledger,
		settings: params.Settings,
		metrics:  params.Metrics,
	}, nil
}

// cancellableStatuses lists the order states Cancel accepts.
var cancellableStatuses = map[enums.OrderStatus]bool{
	enums.OrderStatusPendingApproval:   true,
	enums.OrderStatusPendingAssignment: true,
	enums.OrderStatusAssigned:          true,
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	started := time.Now()
	var result *CreateOrderResult

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		customer, err := repo.FindCustomer(ctx, input.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
		if !customer.Active {
			return pkgerrors.New(pkgerrors.CodeValidation, "customer is inactive")
		}

		warehouse, err := repo.FindDefaultWarehouse(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeDependency, "no default warehouse configured")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default warehouse")
		}

		params, err := s.settings.WithTx(tx).PointsParams(ctx)
		if err != nil {
			return err
		}

		resolver := s.pricing.WithTx(tx)
		lines := make([]models.OrderItem, 0, len(input.Items))
		subtotal := decimal.Zero
		for _, item := range input.Items {
			unitPrice, err := resolver.UnitPrice(ctx, input.CustomerID, pricing.ItemRef{
				Kind:           item.Kind,
				CylinderTypeID: item.CylinderTypeID,
				ProductID:      item.ProductID,
			}, item.Action)
			if err != nil {
				return err
			}

			lineSubtotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
			subtotal = subtotal.Add(lineSubtotal)

			line := models.OrderItem{
				Kind:       item.Kind,
				Action:     item.Action,
				Quantity:   item.Quantity,
				UnitPrice:  unitPrice,
				Subtotal:   lineSubtotal,
				StockState: stockStateFor(item.Kind),
			}
			if item.Kind == enums.ItemKindCylinder {
				id := item.CylinderTypeID
				line.CylinderTypeID = &id
				ct, err := repo.FindCylinderType(ctx, id)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cylinder type")
				}
				line.Name = ct.Name
			} else {
				id := item.ProductID
				line.ProductID = &id
				product, err := repo.FindProduct(ctx, id)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
				}
				line.Name = product.Name
			}
			lines = append(lines, line)
		}
		subtotal = subtotal.Round(2)

		discount := decimal.Zero
		if input.PointsToRedeem > 0 {
			minRedeem := int(params.MinRedeem.IntPart())
			if input.PointsToRedeem < minRedeem {
				return pkgerrors.New(pkgerrors.CodeValidation, "points below minimum redemption").
					WithDetails(map[string]any{"minimum": minRedeem, "requested": input.PointsToRedeem})
			}
			discount = params.DiscountValue.
				Mul(decimal.NewFromInt(int64(input.PointsToRedeem))).
				Round(2)
			if discount.GreaterThan(subtotal) {
				discount = subtotal
			}
		}

		total := subtotal.Sub(discount)
		if total.IsNegative() {
			total = decimal.Zero
		}
		total = total.Round(2)

		pointsEarned := int(total.Mul(params.PerCurrencyUnit).Floor().IntPart())

		order := &models.Order{
			CustomerID:      input.CustomerID,
			WarehouseID:     warehouse.ID,
			DeliveryAddress: input.DeliveryAddress,
			DeliveryLat:     input.DeliveryLat,
			DeliveryLng:     input.DeliveryLng,
			Subtotal:        subtotal,
			Discount:        discount,
			Total:           total,
			OrderStatus:     enums.OrderStatusPendingApproval,
			PaymentStatus:   enums.PaymentStatusPending,
			PointsEarned:    pointsEarned,
			PointsRedeemed:  input.PointsToRedeem,
			VoucherCode:     input.VoucherCode,
			Notes:           input.Notes,
			Items:           lines,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		actorID := input.ActorID
		for i := range order.Items {
			item := &order.Items[i]
			key := inventory.StockKey{
				WarehouseID: warehouse.ID,
				ItemKind:    item.Kind,
				ItemID:      itemRefID(item),
				State:       item.StockState,
			}

			if !item.Action.DebitsStock() {
				// An exchange hands over a full cylinder and takes an empty
				// back, so the bucket stays level and is never debited. The
				// delivery still needs the full units on hand.
				available, err := s.stock.Available(ctx, tx, key)
				if err != nil {
					return err
				}
				if available < item.Quantity {
					s.metrics.IncStockConflict()
					return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
						WithDetails(map[string]any{
							"warehouse_id": key.WarehouseID,
							"item_id":      key.ItemID,
							"state":        key.State,
							"requested":    item.Quantity,
							"available":    available,
						})
				}
				continue
			}

			err := s.stock.Debit(ctx, tx, inventory.MutationInput{
				Key:     key,
				Qty:     item.Quantity,
				Reason:  enums.MovementReasonOrderDebit,
				ActorID: &actorID,
				OrderID: &order.ID,
			})
			if err != nil {
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock {
					s.metrics.IncStockConflict()
				}
				return err
			}
		}

		if input.PointsToRedeem > 0 {
			if _, err := s.ledger.Append(ctx, tx, loyalty.AppendInput{
				CustomerID: input.CustomerID,
				Delta:      -input.PointsToRedeem,
				Reason:     enums.LoyaltyReasonRedemptionSpend,
				OrderID:    &order.ID,
			}); err != nil {
				return err
			}
		}

		if pointsEarned > 0 {
			if _, err := s.ledger.Append(ctx, tx, loyalty.AppendInput{
				CustomerID: input.CustomerID,
				Delta:      pointsEarned,
				Reason:     enums.LoyaltyReasonPurchaseEarn,
				OrderID:    &order.ID,
				Pending:    true,
			}); err != nil {
				return err
			}
		}

		result = &CreateOrderResult{
			Order:          order,
			Subtotal:       subtotal,
			Discount:       discount,
			Total:          total,
			PointsEarned:   pointsEarned,
			PointsRedeemed: input.PointsToRedeem,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCreated()
	s.metrics.AddPointsRedeemed(int64(input.PointsToRedeem))
	s.metrics.ObserveCreateDuration(time.Since(started))
	return result, nil
}

func (s *service) Cancel(ctx context.Context, input CancelOrderInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	var fromStatus enums.OrderStatus

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if input.ActorRole == enums.ActorRoleCliente {
			if order.CustomerID != input.ActorID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
			}
			approved, err := repo.HasApprovedPayment(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query payments")
			}
			if approved {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order has a verified payment")
			}
		}

		if !cancellableStatuses[order.OrderStatus] {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be cancelled in current state").
				WithDetails(map[string]any{"order_status": order.OrderStatus})
		}
		fromStatus = order.OrderStatus

		items, err := repo.FindOrderItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}

		actorID := input.ActorID
		for i := range items {
			item := &items[i]
			if !item.Action.DebitsStock() {
				continue
			}
			if err := s.stock.Credit(ctx, tx, inventory.MutationInput{
				Key: inventory.StockKey{
					WarehouseID: order.WarehouseID,
					ItemKind:    item.Kind,
					ItemID:      itemRefID(item),
					State:       item.StockState,
				},
				Qty:     item.Quantity,
				Reason:  enums.MovementReasonOrderCancel,
				ActorID: &actorID,
				OrderID: &order.ID,
			}); err != nil {
				return err
			}
		}

		if order.PointsRedeemed > 0 {
			if _, err := s.ledger.Append(ctx, tx, loyalty.AppendInput{
				CustomerID: order.CustomerID,
				Delta:      order.PointsRedeemed,
				Reason:     enums.LoyaltyReasonRefund,
				OrderID:    &order.ID,
			}); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		cancelled := enums.OrderStatusCancelled
		if err := repo.UpdateOrder(ctx, order.ID, OrderPatch{
			OrderStatus: &cancelled,
			CancelledAt: &now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order cancelled")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.IncCancelled()
	s.metrics.ObserveTransition(fromStatus.String(), enums.OrderStatusCancelled.String())
	return nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, role enums.ActorRole) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindOrderDetail(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if role == enums.ActorRoleCliente && order.CustomerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, query ListOrdersQuery) (*ListOrdersResult, error) {
	if query.Status != nil && !query.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}

	rows, next, err := s.repo.ListOrders(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	result := &ListOrdersResult{Orders: rows}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func validateCreateInput(input CreateOrderInput) error {
	if input.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	if strings.TrimSpace(input.DeliveryAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}
	if input.PointsToRedeem < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "points to redeem must not be negative")
	}

	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", i))
		}
		if !item.Kind.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: invalid kind", i))
		}
		if !item.Action.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: invalid action", i))
		}
		switch item.Kind {
		case enums.ItemKindCylinder:
			if item.CylinderTypeID == uuid.Nil {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: cylinder type id required", i))
			}
			if item.Action == enums.ItemActionSale {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: sale action applies to products only", i))
			}
		case enums.ItemKindProduct:
			if item.ProductID == uuid.Nil {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: product id required", i))
			}
			if item.Action != enums.ItemActionSale {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: products only support the sale action", i))
			}
		}
	}
	return nil
}

// stockStateFor maps the catalog kind to the bucket debited at creation:
// cylinders ship full, products ship from the available bucket.
func stockStateFor(kind enums.ItemKind) enums.StockState {
	if kind == enums.ItemKindCylinder {
		return enums.StockStateFull
	}
	return enums.StockStateAvailable
}

func itemRefID(item *models.OrderItem) uuid.UUID {
	if item.CylinderTypeID != nil {
		return *item.CylinderTypeID
	}
	if item.ProductID != nil {
		return *item.ProductID
	}
	return uuid.Nil
}
