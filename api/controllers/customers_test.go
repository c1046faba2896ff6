package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/distrigas/distrigas-backend/internal/customers"
	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	"github.com/distrigas/distrigas-backend/pkg/pagination"
)

type stubCustomersService struct {
	customer *models.Customer
	getErr   error
	gotGetID uuid.UUID

	balance     int
	balanceErr  error
	gotBalance  uuid.UUID
	updateErr   error
	gotUpdateID uuid.UUID
	gotPatch    *customers.CustomerPatch
}

func (s *stubCustomersService) Register(ctx context.Context, input customers.RegisterInput) (*models.Customer, error) {
	panic("unimplemented")
}

func (s *stubCustomersService) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	s.gotGetID = id
	return s.customer, s.getErr
}

func (s *stubCustomersService) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	panic("unimplemented")
}

func (s *stubCustomersService) Update(ctx context.Context, id uuid.UUID, patch customers.CustomerPatch) error {
	s.gotUpdateID = id
	s.gotPatch = &patch
	return s.updateErr
}

func (s *stubCustomersService) List(ctx context.Context, params pagination.Params) ([]models.Customer, error) {
	panic("unimplemented")
}

func (s *stubCustomersService) PointsBalance(ctx context.Context, id uuid.UUID) (int, error) {
	s.gotBalance = id
	return s.balance, s.balanceErr
}

func (s *stubCustomersService) PointsHistory(ctx context.Context, id uuid.UUID, limit int) ([]models.LoyaltyEntry, error) {
	panic("unimplemented")
}

func TestGetCustomerMeAliasResolvesToActor(t *testing.T) {
	actorID := uuid.New()
	svc := &stubCustomersService{customer: &models.Customer{ID: actorID, Name: "Ana"}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/me", nil)
	req = actorRequest(req, actorID, enums.ActorRoleCliente)
	req = withRouteParam(req, "customerID", "me")

	rec := httptest.NewRecorder()
	GetCustomer(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.gotGetID != actorID {
		t.Fatalf("expected lookup of %s got %s", actorID, svc.gotGetID)
	}
}

func TestGetCustomerMeAliasRejectedForStaff(t *testing.T) {
	svc := &stubCustomersService{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/me", nil)
	req = actorRequest(req, uuid.New(), enums.ActorRoleAdmin)
	req = withRouteParam(req, "customerID", "me")

	rec := httptest.NewRecorder()
	GetCustomer(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestGetCustomerForbiddenForOtherCliente(t *testing.T) {
	svc := &stubCustomersService{}
	otherID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+otherID.String(), nil)
	req = actorRequest(req, uuid.New(), enums.ActorRoleCliente)
	req = withRouteParam(req, "customerID", otherID.String())

	rec := httptest.NewRecorder()
	GetCustomer(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUpdateCustomerClienteCannotToggleActive(t *testing.T) {
	actorID := uuid.New()
	svc := &stubCustomersService{}

	body := `{"name": "Ana Maria", "active": false}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/customers/"+actorID.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = actorRequest(req, actorID, enums.ActorRoleCliente)
	req = withRouteParam(req, "customerID", actorID.String())

	rec := httptest.NewRecorder()
	UpdateCustomer(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.gotPatch == nil {
		t.Fatal("expected service Update to be called")
	}
	if svc.gotPatch.Active != nil {
		t.Fatal("cliente must not be able to set active")
	}
	if svc.gotPatch.Name == nil || *svc.gotPatch.Name != "Ana Maria" {
		t.Fatalf("expected name patch got %v", svc.gotPatch.Name)
	}
}

func TestGetPointsBalanceReturnsEnvelope(t *testing.T) {
	actorID := uuid.New()
	svc := &stubCustomersService{balance: 140}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/me/points", nil)
	req = actorRequest(req, actorID, enums.ActorRoleCliente)
	req = withRouteParam(req, "customerID", "me")

	rec := httptest.NewRecorder()
	GetPointsBalance(svc, testControllerLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.gotBalance != actorID {
		t.Fatalf("expected balance lookup for %s got %s", actorID, svc.gotBalance)
	}

	var envelope struct {
		Data pointsBalanceResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Balance != 140 {
		t.Fatalf("expected balance 140 got %d", envelope.Data.Balance)
	}
	if envelope.Data.CustomerID != actorID {
		t.Fatalf("expected customer id %s got %s", actorID, envelope.Data.CustomerID)
	}
}
