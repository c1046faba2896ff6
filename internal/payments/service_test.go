package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/internal/loyalty"
	"github.com/distrigas/distrigas-backend/internal/orders"
	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type paymentFixture struct {
	db       *gorm.DB
	svc      Service
	customer models.Customer
	contador models.Employee
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	dsn := "file:payments_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Customer{}, &models.Warehouse{}, &models.Employee{},
		&models.Order{}, &models.Payment{}, &models.LoyaltyEntry{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tx := &gormTxRunner{db: db}
	loyaltySvc, err := loyalty.NewService(loyalty.NewRepository(db))
	if err != nil {
		t.Fatalf("loyalty service: %v", err)
	}
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(db),
		Orders: orders.NewRepository(db),
		Tx:     tx,
		Ledger: loyaltySvc,
	})
	if err != nil {
		t.Fatalf("payments service: %v", err)
	}

	f := &paymentFixture{db: db, svc: svc}
	f.customer = models.Customer{ID: uuid.New(), Name: "Ana", Phone: "555-0101", Active: true}
	f.contador = models.Employee{
		ID: uuid.New(), Name: "Carla", Phone: "555-0404",
		Role: enums.ActorRoleContador, PasswordHash: "x", Active: true,
	}
	for _, row := range []any{&f.customer, &f.contador} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return f
}

func (f *paymentFixture) seedOrder(t *testing.T, status enums.OrderStatus, total string, pointsEarned int) models.Order {
	t.Helper()
	order := models.Order{
		ID:              uuid.New(),
		CustomerID:      f.customer.ID,
		WarehouseID:     uuid.New(),
		DeliveryAddress: "Av. Siempre Viva 742",
		Subtotal:        decimal.RequireFromString(total),
		Discount:        decimal.Zero,
		Total:           decimal.RequireFromString(total),
		OrderStatus:     status,
		PaymentStatus:   enums.PaymentStatusPending,
		PointsEarned:    pointsEarned,
	}
	if err := f.db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func (f *paymentFixture) reloadOrder(t *testing.T, id uuid.UUID) models.Order {
	t.Helper()
	var order models.Order
	if err := f.db.First(&order, "id = ?", id).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	return order
}

func (f *paymentFixture) customerPoints(t *testing.T) int {
	t.Helper()
	var customer models.Customer
	if err := f.db.First(&customer, "id = ?", f.customer.ID).Error; err != nil {
		t.Fatalf("load customer: %v", err)
	}
	return customer.LoyaltyPoints
}

func TestSubmitCreatesUnverifiedPayment(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedOrder(t, enums.OrderStatusDelivered, "97.00", 97)

	proof := "uploads/transfer-123.jpg"
	payment, err := f.svc.Submit(context.Background(), SubmitInput{
		OrderID:   order.ID,
		Amount:    decimal.RequireFromString("97.00"),
		Method:    enums.CollectionMethodTransfer,
		ProofRef:  &proof,
		ActorID:   f.customer.ID,
		ActorRole: enums.ActorRoleCliente,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if payment.Status != enums.VerificationStatusUnverified {
		t.Fatalf("status = %s, want unverified", payment.Status)
	}
	if payment.ProofRef == nil || *payment.ProofRef != proof {
		t.Fatalf("proof ref = %v, want %s", payment.ProofRef, proof)
	}

	got := f.reloadOrder(t, order.ID)
	if got.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("payment status = %s, submission must not settle", got.PaymentStatus)
	}
}

func TestSubmitRejectsForeignAndCancelledOrders(t *testing.T) {
	f := newPaymentFixture(t)

	order := f.seedOrder(t, enums.OrderStatusDelivered, "97.00", 97)
	_, err := f.svc.Submit(context.Background(), SubmitInput{
		OrderID:   order.ID,
		Amount:    decimal.RequireFromString("97.00"),
		Method:    enums.CollectionMethodTransfer,
		ActorID:   uuid.New(),
		ActorRole: enums.ActorRoleCliente,
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("foreign order: err = %v, want FORBIDDEN", err)
	}

	cancelled := f.seedOrder(t, enums.OrderStatusCancelled, "97.00", 97)
	_, err = f.svc.Submit(context.Background(), SubmitInput{
		OrderID:   cancelled.ID,
		Amount:    decimal.RequireFromString("97.00"),
		Method:    enums.CollectionMethodCash,
		ActorID:   f.customer.ID,
		ActorRole: enums.ActorRoleCliente,
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("cancelled order: err = %v, want STATE_CONFLICT", err)
	}
}

func TestVerifyApprovePaysOrderAndCreditsPointsOnce(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedOrder(t, enums.OrderStatusDelivered, "97.00", 97)

	payment, err := f.svc.Submit(context.Background(), SubmitInput{
		OrderID:   order.ID,
		Amount:    decimal.RequireFromString("97.00"),
		Method:    enums.CollectionMethodTransfer,
		ActorID:   f.customer.ID,
		ActorRole: enums.ActorRoleCliente,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := f.svc.Verify(context.Background(), VerifyInput{
		PaymentID: payment.ID,
		Decision:  VerifyDecisionApprove,
		ActorID:   f.contador.ID,
	}); err != nil {
		t.Fatalf("verify: %v", err)
	}

	got := f.reloadOrder(t, order.ID)
	if got.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("payment status = %s, want paid", got.PaymentStatus)
	}
	if points := f.customerPoints(t); points != 97 {
		t.Fatalf("loyalty points = %d, want 97", points)
	}

	// a second approved payment must not credit the accrual again
	extra, err := f.svc.Submit(context.Background(), SubmitInput{
		OrderID:   order.ID,
		Amount:    decimal.RequireFromString("5.00"),
		Method:    enums.CollectionMethodTransfer,
		ActorID:   f.customer.ID,
		ActorRole: enums.ActorRoleCliente,
	})
	if err != nil {
		t.Fatalf("submit extra: %v", err)
	}
	if err := f.svc.Verify(context.Background(), VerifyInput{
		PaymentID: extra.ID,
		Decision:  VerifyDecisionApprove,
		ActorID:   f.contador.ID,
	}); err != nil {
		t.Fatalf("verify extra: %v", err)
	}
	if points := f.customerPoints(t); points != 97 {
		t.Fatalf("loyalty points = %d after second approval, want 97", points)
	}
}

func TestVerifyApprovePartialAmount(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedOrder(t, enums.OrderStatusDelivered, "100.00", 100)

	payment, err := f.svc.Submit(context.Background(), SubmitInput{
		OrderID:   order.ID,
		Amount:    decimal.RequireFromString("40.00"),
		Method:    enums.CollectionMethodTransfer,
		ActorID:   f.customer.ID,
		ActorRole: enums.ActorRoleCliente,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.svc.Verify(context.Background(), VerifyInput{
		PaymentID: payment.ID,
		Decision:  VerifyDecisionApprove,
		ActorID:   f.contador.ID,
	}); err != nil {
		t.Fatalf("verify: %v", err)
	}

	got := f.reloadOrder(t, order.ID)
	if got.PaymentStatus != enums.PaymentStatusPartiallyPaid {
		t.Fatalf("payment status = %s, want partially_paid", got.PaymentStatus)
	}
	if points := f.customerPoints(t); points != 0 {
		t.Fatalf("loyalty points = %d, partial payment must not credit", points)
	}

	// covering the remainder flips the order to paid
	rest, err := f.svc.Submit(context.Background(), SubmitInput{
		OrderID:   order.ID,
		Amount:    decimal.RequireFromString("60.00"),
		Method:    enums.CollectionMethodTransfer,
		ActorID:   f.customer.ID,
		ActorRole: enums.ActorRoleCliente,
	})
	if err != nil {
		t.Fatalf("submit rest: %v", err)
	}
	if err := f.svc.Verify(context.Background(), VerifyInput{
		PaymentID: rest.ID,
		Decision:  VerifyDecisionApprove,
		ActorID:   f.contador.ID,
	}); err != nil {
		t.Fatalf("verify rest: %v", err)
	}

	got = f.reloadOrder(t, order.ID)
	if got.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("payment status = %s, want paid", got.PaymentStatus)
	}
	if points := f.customerPoints(t); points != 100 {
		t.Fatalf("loyalty points = %d, want 100", points)
	}
}

func TestVerifyRejectKeepsOrderPending(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedOrder(t, enums.OrderStatusDelivered, "97.00", 97)

	payment, err := f.svc.Submit(context.Background(), SubmitInput{
		OrderID:   order.ID,
		Amount:    decimal.RequireFromString("97.00"),
		Method:    enums.CollectionMethodTransfer,
		ActorID:   f.customer.ID,
		ActorRole: enums.ActorRoleCliente,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	reason := "blurry transfer receipt"
	if err := f.svc.Verify(context.Background(), VerifyInput{
		PaymentID:    payment.ID,
		Decision:     VerifyDecisionReject,
		RejectReason: &reason,
		ActorID:      f.contador.ID,
	}); err != nil {
		t.Fatalf("verify: %v", err)
	}

	var stored models.Payment
	if err := f.db.First(&stored, "id = ?", payment.ID).Error; err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if stored.Status != enums.VerificationStatusRejected {
		t.Fatalf("status = %s, want rejected", stored.Status)
	}
	if stored.RejectReason == nil || *stored.RejectReason != reason {
		t.Fatalf("reject reason = %v, want %s", stored.RejectReason, reason)
	}

	got := f.reloadOrder(t, order.ID)
	if got.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("payment status = %s, want pending", got.PaymentStatus)
	}
	if points := f.customerPoints(t); points != 0 {
		t.Fatalf("loyalty points = %d, want 0", points)
	}
}

func TestVerifyRejectRequiresReason(t *testing.T) {
	f := newPaymentFixture(t)

	err := f.svc.Verify(context.Background(), VerifyInput{
		PaymentID: uuid.New(),
		Decision:  VerifyDecisionReject,
		ActorID:   f.contador.ID,
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want VALIDATION", err)
	}
}

func TestVerifyTwiceReturnsAlreadyVerified(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedOrder(t, enums.OrderStatusDelivered, "97.00", 0)

	payment, err := f.svc.Submit(context.Background(), SubmitInput{
		OrderID:   order.ID,
		Amount:    decimal.RequireFromString("97.00"),
		Method:    enums.CollectionMethodCash,
		ActorID:   f.customer.ID,
		ActorRole: enums.ActorRoleCliente,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.svc.Verify(context.Background(), VerifyInput{
		PaymentID: payment.ID,
		Decision:  VerifyDecisionApprove,
		ActorID:   f.contador.ID,
	}); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	err = f.svc.Verify(context.Background(), VerifyInput{
		PaymentID: payment.ID,
		Decision:  VerifyDecisionApprove,
		ActorID:   f.contador.ID,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeAlreadyVerified {
		t.Fatalf("err = %v, want ALREADY_VERIFIED", err)
	}
}

func TestListByOrderRestrictsClientes(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedOrder(t, enums.OrderStatusDelivered, "97.00", 97)

	if _, err := f.svc.Submit(context.Background(), SubmitInput{
		OrderID:   order.ID,
		Amount:    decimal.RequireFromString("97.00"),
		Method:    enums.CollectionMethodTransfer,
		ActorID:   f.customer.ID,
		ActorRole: enums.ActorRoleCliente,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	listed, err := f.svc.ListByOrder(context.Background(), order.ID, f.customer.ID, enums.ActorRoleCliente)
	if err != nil {
		t.Fatalf("list as owner: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("payments = %d, want 1", len(listed))
	}

	_, err = f.svc.ListByOrder(context.Background(), order.ID, uuid.New(), enums.ActorRoleCliente)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
}
