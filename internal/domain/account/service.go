package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicore/clinicore/internal/platform/auth"
)

type Service struct {
	users     Repository
	jwtSecret []byte
}

func NewService(users Repository, jwtSecret []byte) *Service {
	return &Service{users: users, jwtSecret: jwtSecret}
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
}

// Register creates an account and returns it with a signed token.
// Role defaults to patient; privileged roles are assigned by an admin
// after registration, never self-selected here.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, string, error) {
	role := req.Role
	if role == "" {
		role = RolePatient
	}
	if !validRoles[role] {
		return nil, "", fmt.Errorf("invalid role %q", role)
	}
	if role != RolePatient {
		return nil, "", fmt.Errorf("role %s cannot be self-assigned", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		Active:       true,
	}
	if req.Phone != "" {
		u.Phone = &req.Phone
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := auth.IssueToken(s.jwtSecret, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login verifies credentials and returns the account with a signed
// token. Unknown email and wrong password produce the same error so
// callers cannot probe for registered addresses.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", fmt.Errorf("invalid credentials")
	}
	if !u.Active {
		return nil, "", fmt.Errorf("account is disabled")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", fmt.Errorf("invalid credentials")
	}
	token, err := auth.IssueToken(s.jwtSecret, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, u *User) error {
	if u.FirstName == "" || u.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	return s.users.Update(ctx, u)
}

// SetRole is the admin path for granting staff roles.
func (s *Service) SetRole(ctx context.Context, id uuid.UUID, role string) (*User, error) {
	if !validRoles[role] {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Role = role
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	if !validRoles[role] {
		return nil, 0, fmt.Errorf("invalid role %q", role)
	}
	return s.users.ListByRole(ctx, role, limit, offset)
}
