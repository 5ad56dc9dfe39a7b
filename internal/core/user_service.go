package core

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"reliefnet-backend-go/internal/crypto"
	"reliefnet-backend-go/internal/db"
	"reliefnet-backend-go/internal/models"
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	NewToken(userID string, role models.Role) (string, error)
}

type userService struct {
	userRepo          db.UserRepository
	tokens            TokenIssuer
	adminBootstrapKey string
	logger            *zap.Logger
}

// NewUserService creates a new UserService. An empty adminBootstrapKey
// disables admin registration.
func NewUserService(ur db.UserRepository, tokens TokenIssuer, adminBootstrapKey string, logger *zap.Logger) UserService {
	return &userService{userRepo: ur, tokens: tokens, adminBootstrapKey: adminBootstrapKey, logger: logger}
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error) {
	return s.register(ctx, req, models.RoleUser)
}

func (s *userService) RegisterAdmin(ctx context.Context, key string, req models.RegisterRequest) (*AuthResult, error) {
	if s.adminBootstrapKey == "" {
		return nil, fmt.Errorf("%w: Admin registration is disabled", ErrForbidden)
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.adminBootstrapKey)) != 1 {
		return nil, fmt.Errorf("%w: Invalid admin key", ErrForbidden)
	}
	return s.register(ctx, req, models.RoleAdmin)
}

func (s *userService) register(ctx context.Context, req models.RegisterRequest, role models.Role) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		return nil, validationf("Missing required fields: name, email, password")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationf("Invalid email address")
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, validationf("Password must be at most %d bytes", maxPasswordBytes)
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Mobile:       strings.TrimSpace(string(req.Mobile)),
		PasswordHash: hash,
		Role:         role,
		Addresses: []models.Address{{
			Country:  req.Country,
			State:    req.State,
			City:     req.City,
			Landmark: req.Landmark,
			Pincode:  string(req.Pincode),
			HouseNo:  req.HouseNo,
			Address:  req.Address,
		}},
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: User with this email already exists", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return s.issue(user)
}

// Login reports the same error for an unknown email and a wrong password.
func (s *userService) Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, validationf("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: Invalid email or password", ErrUnauthenticated)
		}
		return nil, err
	}
	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return nil, fmt.Errorf("%w: Invalid email or password", ErrUnauthenticated)
		}
		return nil, err
	}
	return s.issue(user)
}

func (s *userService) Profile(ctx context.Context, actor Actor) (*models.User, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: User not authenticated", ErrUnauthenticated)
	}
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, translate(err, "User not found")
	}
	return user, nil
}

func (s *userService) issue(user *models.User) (*AuthResult, error) {
	role := user.Role
	if role == "" {
		role = models.RoleUser
	}
	token, err := s.tokens.NewToken(user.ID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
