package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/internal/catalog"
	"github.com/distrigas/distrigas-backend/internal/customers"
	"github.com/distrigas/distrigas-backend/internal/deliveries"
	"github.com/distrigas/distrigas-backend/internal/employees"
	"github.com/distrigas/distrigas-backend/internal/inventory"
	"github.com/distrigas/distrigas-backend/internal/orders"
	"github.com/distrigas/distrigas-backend/internal/payments"
	"github.com/distrigas/distrigas-backend/internal/settings"
	pkgauth "github.com/distrigas/distrigas-backend/pkg/auth"
	"github.com/distrigas/distrigas-backend/pkg/auth/session"
	"github.com/distrigas/distrigas-backend/pkg/config"
	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	"github.com/distrigas/distrigas-backend/pkg/logger"
	"github.com/distrigas/distrigas-backend/pkg/pagination"
	"github.com/distrigas/distrigas-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", session.ErrInvalidRefreshToken
}

type stubCatalogService struct{}

func (stubCatalogService) CreateCylinderType(ctx context.Context, input catalog.CylinderTypeInput) (*models.CylinderType, error) {
	panic("unimplemented")
}

func (stubCatalogService) GetCylinderType(ctx context.Context, id uuid.UUID) (*models.CylinderType, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListCylinderTypes(ctx context.Context, onlyAvailable bool) ([]models.CylinderType, error) {
	return nil, nil
}

func (stubCatalogService) UpdateCylinderType(ctx context.Context, id uuid.UUID, patch catalog.CylinderTypePatch) error {
	panic("unimplemented")
}

func (stubCatalogService) CreateProduct(ctx context.Context, input catalog.ProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListProducts(ctx context.Context, onlyAvailable bool) ([]models.Product, error) {
	return nil, nil
}

func (stubCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, patch catalog.ProductPatch) error {
	panic("unimplemented")
}

func (stubCatalogService) CreateWarehouse(ctx context.Context, input catalog.WarehouseInput) (*models.Warehouse, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	return nil, nil
}

func (stubCatalogService) SetDefaultWarehouse(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) SetCustomerPrice(ctx context.Context, input catalog.CustomerPriceInput) error {
	panic("unimplemented")
}

func (stubCatalogService) ListCustomerPrices(ctx context.Context, customerID uuid.UUID) ([]models.CustomerPrice, error) {
	return nil, nil
}

func (stubCatalogService) RemoveCustomerPrice(ctx context.Context, customerID, cylinderTypeID uuid.UUID) error {
	panic("unimplemented")
}

type stubCustomersService struct{}

func (stubCustomersService) Register(ctx context.Context, input customers.RegisterInput) (*models.Customer, error) {
	panic("unimplemented")
}

func (stubCustomersService) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return &models.Customer{}, nil
}

func (stubCustomersService) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	panic("unimplemented")
}

func (stubCustomersService) Update(ctx context.Context, id uuid.UUID, patch customers.CustomerPatch) error {
	panic("unimplemented")
}

func (stubCustomersService) List(ctx context.Context, params pagination.Params) ([]models.Customer, error) {
	return nil, nil
}

func (stubCustomersService) PointsBalance(ctx context.Context, id uuid.UUID) (int, error) {
	return 0, nil
}

func (stubCustomersService) PointsHistory(ctx context.Context, id uuid.UUID, limit int) ([]models.LoyaltyEntry, error) {
	return nil, nil
}

type stubDeliveriesService struct{}

func (stubDeliveriesService) Assign(ctx context.Context, input deliveries.AssignInput) error {
	panic("unimplemented")
}

func (stubDeliveriesService) Start(ctx context.Context, input deliveries.StartInput) error {
	panic("unimplemented")
}

func (stubDeliveriesService) Complete(ctx context.Context, input deliveries.CompleteInput) error {
	panic("unimplemented")
}

func (stubDeliveriesService) ReportIssue(ctx context.Context, input deliveries.ReportIssueInput) error {
	panic("unimplemented")
}

func (stubDeliveriesService) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error) {
	return &models.Delivery{}, nil
}

type stubEmployeesService struct{}

func (stubEmployeesService) Create(ctx context.Context, input employees.CreateInput) (*models.Employee, error) {
	panic("unimplemented")
}

func (stubEmployeesService) Get(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	return &models.Employee{}, nil
}

func (stubEmployeesService) List(ctx context.Context, role *enums.ActorRole) ([]models.Employee, error) {
	return nil, nil
}

func (stubEmployeesService) Update(ctx context.Context, id uuid.UUID, patch employees.EmployeePatch) error {
	panic("unimplemented")
}

func (stubEmployeesService) ChangePassword(ctx context.Context, id uuid.UUID, password string) error {
	panic("unimplemented")
}

func (stubEmployeesService) Login(ctx context.Context, input employees.LoginInput) (*employees.LoginResult, error) {
	panic("unimplemented")
}

func (stubEmployeesService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubInventoryService struct{}

func (stubInventoryService) Debit(ctx context.Context, tx *gorm.DB, input inventory.MutationInput) error {
	panic("unimplemented")
}

func (stubInventoryService) Credit(ctx context.Context, tx *gorm.DB, input inventory.MutationInput) error {
	panic("unimplemented")
}

func (stubInventoryService) Available(ctx context.Context, tx *gorm.DB, key inventory.StockKey) (int, error) {
	panic("unimplemented")
}

func (stubInventoryService) Transfer(ctx context.Context, input inventory.TransferInput) error {
	panic("unimplemented")
}

func (stubInventoryService) Adjust(ctx context.Context, input inventory.AdjustInput) error {
	panic("unimplemented")
}

func (stubInventoryService) GetStock(ctx context.Context, key inventory.StockKey) (*models.InventoryStock, error) {
	panic("unimplemented")
}

func (stubInventoryService) ListStock(ctx context.Context, warehouseID uuid.UUID) ([]models.InventoryStock, error) {
	return nil, nil
}

func (stubInventoryService) ListMovements(ctx context.Context, key inventory.StockKey, limit int) ([]models.InventoryMovement, error) {
	return nil, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Create(ctx context.Context, input orders.CreateOrderInput) (*orders.CreateOrderResult, error) {
	panic("unimplemented")
}

func (stubOrdersService) Cancel(ctx context.Context, input orders.CancelOrderInput) error {
	panic("unimplemented")
}

func (stubOrdersService) Get(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, role enums.ActorRole) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrdersService) List(ctx context.Context, query orders.ListOrdersQuery) (*orders.ListOrdersResult, error) {
	return &orders.ListOrdersResult{}, nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) Submit(ctx context.Context, input payments.SubmitInput) (*models.Payment, error) {
	panic("unimplemented")
}

func (stubPaymentsService) Verify(ctx context.Context, input payments.VerifyInput) error {
	panic("unimplemented")
}

func (stubPaymentsService) ListByOrder(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, role enums.ActorRole) ([]models.Payment, error) {
	return nil, nil
}

func (stubPaymentsService) SettleOnDelivery(ctx context.Context, tx *gorm.DB, order *models.Order, amount decimal.Decimal, method enums.CollectionMethod, collectorID uuid.UUID) error {
	panic("unimplemented")
}

type stubSettingsService struct{}

func (s stubSettingsService) WithTx(tx *gorm.DB) settings.Service {
	return s
}

func (stubSettingsService) Get(ctx context.Context, key string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubSettingsService) Set(ctx context.Context, key string, value decimal.Decimal) error {
	panic("unimplemented")
}

func (stubSettingsService) List(ctx context.Context) ([]models.Setting, error) {
	return nil, nil
}

func (stubSettingsService) PointsParams(ctx context.Context) (settings.PointsParams, error) {
	return settings.PointsParams{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessionManager{},
		Services{
			Catalog:    stubCatalogService{},
			Customers:  stubCustomersService{},
			Deliveries: stubDeliveriesService{},
			Employees:  stubEmployeesService{},
			Inventory:  stubInventoryService{},
			Orders:     stubOrdersService{},
			Payments:   stubPaymentsService{},
			Settings:   stubSettingsService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		ActorID: uuid.New(),
		Role:    role,
		JTI:     session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthRoutesArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for health live got %d", resp.Code)
	}
}

func TestAPIRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOrdersListSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCliente))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for order list got %d", resp.Code)
	}
}

func TestEmployeeRoutesRequireAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	contador := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	contador.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleContador))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, contador)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for contador got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestStockRoutesRejectClientes(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	warehouseID := uuid.New()

	cliente := httptest.NewRequest(http.MethodGet, "/api/v1/warehouses/"+warehouseID.String()+"/stock", nil)
	cliente.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCliente))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, cliente)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cliente got %d", resp.Code)
	}

	bodeguero := httptest.NewRequest(http.MethodGet, "/api/v1/warehouses/"+warehouseID.String()+"/stock", nil)
	bodeguero.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleBodeguero))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, bodeguero)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for bodeguero got %d", resp.Code)
	}
}

func TestSettingsWritesRequireAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	read := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	read.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleContador))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, read)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for contador settings read got %d", resp.Code)
	}
}

func TestCatalogReadsOpenToAllRoles(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cylinder-types", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCliente))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for catalog read got %d", resp.Code)
	}
}
