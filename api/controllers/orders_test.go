package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/distrigas/distrigas-backend/api/middleware"
	"github.com/distrigas/distrigas-backend/internal/orders"
	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	"github.com/distrigas/distrigas-backend/pkg/logger"
	"github.com/distrigas/distrigas-backend/pkg/types"
)

type stubOrdersService struct {
	createResult *orders.CreateOrderResult
	createErr    error
	gotCreate    *orders.CreateOrderInput

	cancelErr error
	gotCancel *orders.CancelOrderInput

	getOrder *models.Order
	getErr   error

	listResult *orders.ListOrdersResult
	listErr    error
	gotList    *orders.ListOrdersQuery
}

func (s *stubOrdersService) Create(ctx context.Context, input orders.CreateOrderInput) (*orders.CreateOrderResult, error) {
	s.gotCreate = &input
	return s.createResult, s.createErr
}

func (s *stubOrdersService) Cancel(ctx context.Context, input orders.CancelOrderInput) error {
	s.gotCancel = &input
	return s.cancelErr
}

func (s *stubOrdersService) Get(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, role enums.ActorRole) (*models.Order, error) {
	return s.getOrder, s.getErr
}

func (s *stubOrdersService) List(ctx context.Context, query orders.ListOrdersQuery) (*orders.ListOrdersResult, error) {
	s.gotList = &query
	return s.listResult, s.listErr
}

func testControllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

func actorRequest(req *http.Request, actorID uuid.UUID, role enums.ActorRole) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), actorID, role))
}

func withRouteParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestCreateOrderClienteOrdersForThemselves(t *testing.T) {
	actorID := uuid.New()
	orderID := uuid.New()

	svc := &stubOrdersService{
		createResult: &orders.CreateOrderResult{
			Order: &models.Order{
				ID:            orderID,
				CustomerID:    actorID,
				OrderStatus:   enums.OrderStatusPendingApproval,
				PaymentStatus: enums.PaymentStatusPending,
			},
			Subtotal:     decimal.RequireFromString("97.00"),
			Discount:     decimal.Zero,
			Total:        decimal.RequireFromString("97.00"),
			PointsEarned: 9,
		},
	}

	payload := map[string]any{
		// Another customer's id must be ignored for clientes.
		"customer_id": uuid.NewString(),
		"items": []map[string]any{
			{
				"kind":             "cylinder",
				"cylinder_type_id": uuid.NewString(),
				"action":           "exchange",
				"quantity":         2,
			},
		},
		"delivery_address": "Av. Central 123",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = actorRequest(req, actorID, enums.ActorRoleCliente)

	rec := httptest.NewRecorder()
	CreateOrder(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.gotCreate == nil {
		t.Fatal("expected service Create to be called")
	}
	if svc.gotCreate.CustomerID != actorID {
		t.Fatalf("expected customer id %s got %s", actorID, svc.gotCreate.CustomerID)
	}
	if svc.gotCreate.ActorRole != enums.ActorRoleCliente {
		t.Fatalf("unexpected actor role %s", svc.gotCreate.ActorRole)
	}

	var envelope struct {
		Data createOrderResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderID != orderID {
		t.Fatalf("expected order id %s got %s", orderID, envelope.Data.OrderID)
	}
	if !envelope.Data.Total.Equal(decimal.RequireFromString("97.00")) {
		t.Fatalf("unexpected total %s", envelope.Data.Total)
	}
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	svc := &stubOrdersService{}

	body := []byte(`{"items": [], "delivery_address": "Av. Central 123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = actorRequest(req, uuid.New(), enums.ActorRoleCliente)

	rec := httptest.NewRecorder()
	CreateOrder(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.gotCreate != nil {
		t.Fatal("service must not be called on invalid payload")
	}

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if envelope.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestCancelOrderAcceptsEmptyBody(t *testing.T) {
	actorID := uuid.New()
	orderID := uuid.New()
	svc := &stubOrdersService{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", nil)
	req = actorRequest(req, actorID, enums.ActorRoleAdmin)
	req = withRouteParam(req, "orderID", orderID.String())

	rec := httptest.NewRecorder()
	CancelOrder(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.gotCancel == nil {
		t.Fatal("expected service Cancel to be called")
	}
	if svc.gotCancel.OrderID != orderID {
		t.Fatalf("expected order id %s got %s", orderID, svc.gotCancel.OrderID)
	}
	if svc.gotCancel.Reason != nil {
		t.Fatalf("expected nil reason got %q", *svc.gotCancel.Reason)
	}
}

func TestGetOrderRejectsMalformedID(t *testing.T) {
	svc := &stubOrdersService{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
	req = actorRequest(req, uuid.New(), enums.ActorRoleAdmin)
	req = withRouteParam(req, "orderID", "not-a-uuid")

	rec := httptest.NewRecorder()
	GetOrder(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestListOrdersClienteScopedToActor(t *testing.T) {
	actorID := uuid.New()
	svc := &stubOrdersService{listResult: &orders.ListOrdersResult{}}

	// A cliente passing someone else's customer_id still only sees their own.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?customer_id="+uuid.NewString(), nil)
	req = actorRequest(req, actorID, enums.ActorRoleCliente)

	rec := httptest.NewRecorder()
	ListOrders(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.gotList == nil {
		t.Fatal("expected service List to be called")
	}
	if svc.gotList.CustomerID == nil || *svc.gotList.CustomerID != actorID {
		t.Fatalf("expected list scoped to %s got %v", actorID, svc.gotList.CustomerID)
	}
}

func TestListOrdersStaffFilters(t *testing.T) {
	customerID := uuid.New()
	svc := &stubOrdersService{listResult: &orders.ListOrdersResult{}}

	target := "/api/v1/orders?customer_id=" + customerID.String() + "&status=delivered&limit=10"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = actorRequest(req, uuid.New(), enums.ActorRoleContador)

	rec := httptest.NewRecorder()
	ListOrders(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.gotList.CustomerID == nil || *svc.gotList.CustomerID != customerID {
		t.Fatalf("expected customer filter %s got %v", customerID, svc.gotList.CustomerID)
	}
	if svc.gotList.Status == nil || *svc.gotList.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected status filter delivered got %v", svc.gotList.Status)
	}
	if svc.gotList.Pagination.Limit != 10 {
		t.Fatalf("expected limit 10 got %d", svc.gotList.Pagination.Limit)
	}
}
