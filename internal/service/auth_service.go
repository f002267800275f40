package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Marga-Ghale/ora-crm-backend/internal/config"
	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
	"github.com/Marga-Ghale/ora-crm-backend/internal/types"
)

// ============================================
// Auth Service
// ============================================

const passwordCost = 10

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"omitempty,role"`
}

type ProfileInput struct {
	Name     *string `json:"name" validate:"omitnil,min=1"`
	Password *string `json:"password" validate:"omitnil,min=6"`
}

// Claims is the access token payload. Subject and ID both carry the user id.
type Claims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*repository.User, error)
	Login(ctx context.Context, email, password string) (string, *repository.User, error)
	ValidateToken(token string) (*Claims, error)
	Profile(ctx context.Context, userID string) (*repository.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*repository.User, error)
}

type authService struct {
	cfg       *config.Config
	userRepo  repository.UserRepository
	dashboard DashboardService
	now       func() time.Time
}

// NewAuthService builds the auth service. dashboard may be nil; when set, a
// name change drops the user's cached stats, which embed the owner's name.
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, dashboard DashboardService) AuthService {
	return &authService{cfg: cfg, userRepo: userRepo, dashboard: dashboard, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*repository.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = types.RoleSales
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &repository.User{
		Email:    in.Email,
		Password: string(hashedPassword),
		Name:     in.Name,
		Role:     in.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, invalidField("email", "is already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *repository.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, user, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*repository.User, error) {
	id, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*repository.User, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), passwordCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if in.Name != nil && s.dashboard != nil {
		s.dashboard.Invalidate(ctx, userID)
	}
	return user, nil
}

func (s *authService) generateToken(user *repository.User) (string, error) {
	now := s.now()
	userID := user.ID.Hex()
	claims := Claims{
		ID:   userID,
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL())),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}
