package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	config    config.AuthConfig

	now func() time.Time
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, cfg config.AuthConfig) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		config:    cfg,
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	s.logger.Info("Registering user", "email", req.Email)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: string(hash),
		Role:     models.RoleStudent,
	}
	// A concurrent registration can still win between the check and the insert
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEmailNotRegistered
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.logger.Warn("Login rejected", "user_id", user.ID, "reason", "password mismatch")
		return nil, ErrIncorrectPassword
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return &LoginResponse{User: user, Token: token}, nil
}

// IssueToken signs an HS256 session token carrying the user id
func (s *authService) IssueToken(userID uint) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"userId": userID,
		"iat":    now.Unix(),
		"exp":    now.Add(s.config.TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry and returns the user id
func (s *authService) ParseToken(tokenString string) (uint, error) {
	parser := jwt.Parser{}
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	// exp is optional for jwt.Parse, but not for session tokens
	if _, ok := claims["exp"]; !ok {
		return 0, ErrInvalidToken
	}

	// JSON numbers decode as float64
	userID, ok := claims["userId"].(float64)
	if !ok || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return uint(userID), nil
}

func (s *authService) TokenTTL() time.Duration {
	return s.config.TokenTTL
}
