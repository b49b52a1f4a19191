package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const accessTokenTTL = 24 * time.Hour

type AuthService struct {
	Repo      UserRepo
	JWTSecret []byte
}

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	User        models.User
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", req.Email)

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.Repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "reason", "unknown email")
			return nil, newError(ErrUnauthorized, "", "invalid email or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "reason", "wrong password")
		return nil, newError(ErrUnauthorized, "", "invalid email or password")
	}

	exp := time.Now().Add(accessTokenTTL)
	token, err := tokens.NewAccessToken(s.JWTSecret, user.ID.String(), user.Role, exp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	l.Info("login_success", "user_id", user.ID)
	return &LoginResult{AccessToken: token, AccessExp: exp, User: *user}, nil
}

// EnsureAdmin creates an admin account unless the email is already registered.
// It reports whether a new account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, invalidInput("admin email and password are required")
	}

	if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("get user: %w", err)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		name = "Admin"
	}

	user := &models.User{Name: name, Email: email, PasswordHash: pwHash, Role: models.RoleAdmin}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if repo.IsDuplicate(err) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
