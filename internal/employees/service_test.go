package employees

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/config"
	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
)

type stubSessions struct {
	generated []string
	revoked   []string
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func newEmployeeFixture(t *testing.T) (Service, *stubSessions) {
	t.Helper()

	dsn := "file:employees_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Employee{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sessions := &stubSessions{}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Sessions: sessions,
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "distrigas-test",
			ExpirationMinutes: 15,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	})
	if err != nil {
		t.Fatalf("employees service: %v", err)
	}
	return svc, sessions
}

func TestCreateHashesPasswordAndRejectsClienteRole(t *testing.T) {
	svc, _ := newEmployeeFixture(t)

	employee, err := svc.Create(context.Background(), CreateInput{
		Name:     "Luis",
		Phone:    "555-0202",
		Role:     enums.ActorRoleRepartidor,
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if employee.PasswordHash == "correct horse" || employee.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}

	_, err = svc.Create(context.Background(), CreateInput{
		Name:     "Impostor",
		Phone:    "555-0303",
		Role:     enums.ActorRoleCliente,
		Password: "whatever1",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("cliente role: err = %v, want VALIDATION", err)
	}
}

func TestLoginMintsTokenPair(t *testing.T) {
	svc, sessions := newEmployeeFixture(t)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:     "Carla",
		Phone:    "555-0404",
		Role:     enums.ActorRoleContador,
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := svc.Login(context.Background(), LoginInput{
		Phone:    "555-0404",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Employee.ID != created.ID {
		t.Fatalf("employee = %s, want %s", result.Employee.ID, created.ID)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("token pair not minted")
	}
	if len(sessions.generated) != 1 || sessions.generated[0] != result.AccessID {
		t.Fatalf("session generated for %v, want %s", sessions.generated, result.AccessID)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newEmployeeFixture(t)

	if _, err := svc.Create(context.Background(), CreateInput{
		Name:     "Luis",
		Phone:    "555-0202",
		Role:     enums.ActorRoleRepartidor,
		Password: "s3cret-pass",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := map[string]LoginInput{
		"unknown phone":  {Phone: "555-9999", Password: "s3cret-pass"},
		"wrong password": {Phone: "555-0202", Password: "nope-nope"},
	}
	for name, input := range cases {
		_, err := svc.Login(context.Background(), input)
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("%s: err = %v, want UNAUTHORIZED", name, err)
		}
		if appErr.Message() != "invalid credentials" {
			t.Fatalf("%s: message = %q leaks account state", name, appErr.Message())
		}
	}
}

func TestLoginRejectsInactiveEmployee(t *testing.T) {
	svc, _ := newEmployeeFixture(t)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:     "Luis",
		Phone:    "555-0202",
		Role:     enums.ActorRoleRepartidor,
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	inactive := false
	if err := svc.Update(context.Background(), created.ID, EmployeePatch{Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginInput{
		Phone:    "555-0202",
		Password: "s3cret-pass",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}
}
