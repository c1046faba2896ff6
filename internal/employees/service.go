package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/auth"
	"github.com/distrigas/distrigas-backend/pkg/auth/session"
	"github.com/distrigas/distrigas-backend/pkg/config"
	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
	"github.com/distrigas/distrigas-backend/pkg/security"
)

// CreateInput registers a staff member. The password is hashed before it
// touches the database.
type CreateInput struct {
	Name     string
	Phone    string
	Role     enums.ActorRole
	Password string
}

// LoginInput authenticates an employee by phone and password.
type LoginInput struct {
	Phone    string
	Password string
}

// LoginResult carries the minted token pair.
type LoginResult struct {
	Employee     *models.Employee
	AccessToken  string
	RefreshToken string
	AccessID     string
}

// sessionStore is the slice of session.Manager the service needs.
type sessionStore interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Service owns staff records and employee authentication.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Employee, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	List(ctx context.Context, role *enums.ActorRole) ([]models.Employee, error)
	Update(ctx context.Context, id uuid.UUID, patch EmployeePatch) error
	ChangePassword(ctx context.Context, id uuid.UUID, password string) error
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	repo     Repository
	sessions sessionStore
	jwt      config.JWTConfig
	password config.PasswordConfig
}

// ServiceParams bundles the employee service dependencies.
type ServiceParams struct {
	Repo     Repository
	Sessions sessionStore
	JWT      config.JWTConfig
	Password config.PasswordConfig
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("employees repository required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	return &service{
		repo:     params.Repo,
		sessions: params.Sessions,
		jwt:      params.JWT,
		password: params.Password,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Employee, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee name required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee phone required")
	}
	if !input.Role.IsValid() || input.Role == enums.ActorRoleCliente {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid employee role")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	if _, err := s.repo.FindByPhone(ctx, input.Phone); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check phone")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	row := &models.Employee{
		Name:         input.Name,
		Phone:        input.Phone,
		Role:         input.Role,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist employee")
	}
	return row, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee id required")
	}
	row, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
	}
	return row, nil
}

func (s *service) List(ctx context.Context, role *enums.ActorRole) ([]models.Employee, error) {
	if role != nil && !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role filter")
	}
	rows, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list employees")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, patch EmployeePatch) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if patch.Role != nil && (!patch.Role.IsValid() || *patch.Role == enums.ActorRoleCliente) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid employee role")
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update employee")
	}
	return nil
}

// ChangePassword rehashes and stores a new password for an employee.
func (s *service) ChangePassword(ctx context.Context, id uuid.UUID, password string) error {
	if len(password) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	hash, err := security.HashPassword(password, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.Update(ctx, id, EmployeePatch{PasswordHash: &hash}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update employee password")
	}
	return nil
}

// Login verifies credentials and mints an access/refresh pair. The failure
// message does not reveal whether the phone exists.
func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if strings.TrimSpace(input.Phone) == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone and password required")
	}

	employee, err := s.repo.FindByPhone(ctx, input.Phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
	}
	if !employee.Active {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(input.Password, employee.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	accessID := session.NewAccessID()
	accessToken, err := auth.MintAccessToken(s.jwt, time.Now().UTC(), auth.AccessTokenPayload{
		ActorID: employee.ID,
		Role:    employee.Role,
		JTI:     accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	return &LoginResult{
		Employee:     employee,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessID:     accessID,
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}
