package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ikkim/shopfront-backend/internal/app/model"
	"github.com/ikkim/shopfront-backend/internal/app/repository"
	apperrors "github.com/ikkim/shopfront-backend/internal/errors"
	"github.com/ikkim/shopfront-backend/internal/metrics"
	"github.com/ikkim/shopfront-backend/internal/policy"
	"github.com/ikkim/shopfront-backend/pkg/logger"
	"github.com/ikkim/shopfront-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = apperrors.Conflict(apperrors.AuthEmailAlreadyExists, "Email is already registered")
	ErrInvalidCredentials = apperrors.Auth(apperrors.AuthInvalidCredentials, "Invalid email or password")
	ErrUserNotFound       = apperrors.NotFound(apperrors.UserNotFound, "User not found")

	ErrMissingToken = apperrors.Auth(apperrors.AuthUnauthorized, "Authentication required")
	ErrTokenInvalid = apperrors.Auth(apperrors.AuthTokenInvalid, "Invalid token").WithStatus(403)
	ErrTokenExpired = apperrors.Auth(apperrors.AuthTokenExpired, "Token has expired").WithStatus(403)
	ErrTokenRevoked = apperrors.Auth(apperrors.AuthTokenInvalid, "Token has been revoked").WithStatus(403)
)

// TokenRevoker remembers logged-out token ids.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService interface {
	Signup(email, password, role string) (*model.User, error)
	Login(email, password string) (*model.User, string, error)
	Verify(ctx context.Context, token string) (*policy.Identity, error)
	Logout(ctx context.Context, token string) error
	GetUserByID(id uint) (*model.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	revoker   TokenRevoker
	jwtSecret string
	expiry    time.Duration
}

// NewAuthService builds the auth service. revoker may be nil, in which case
// logout is a no-op and tokens stay valid until they expire.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtSecret string,
	expiry time.Duration,
	revoker TokenRevoker,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		revoker:   revoker,
		jwtSecret: jwtSecret,
		expiry:    expiry,
	}
}

func (s *authService) Signup(email, password, role string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if role == "" {
		role = policy.RoleCustomer
	}

	logger.Info("Attempting user signup", map[string]interface{}{
		"email": email,
		"role":  role,
	})

	if err := validateSignup(email, password, role); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("signup", "failure").Inc()
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, apperrors.ParseDBError(err, "user")
	}
	if existing != nil {
		logger.Warn("Signup failed: email already exists", map[string]interface{}{
			"email": email,
		})
		metrics.AuthAttemptsTotal.WithLabelValues("signup", "failure").Inc()
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, apperrors.Internal("failed to hash password", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         model.UserRole(role),
	}
	if err := s.userRepo.Create(user); err != nil {
		// Lost the race against a concurrent signup for the same email.
		if apperrors.IsDuplicateKey(err) {
			metrics.AuthAttemptsTotal.WithLabelValues("signup", "failure").Inc()
			return nil, ErrEmailAlreadyExists.Wrap(err)
		}
		logger.Error("Failed to create user", err, map[string]interface{}{
			"email": email,
		})
		return nil, apperrors.ParseDBError(err, "user")
	}

	metrics.AuthAttemptsTotal.WithLabelValues("signup", "success").Inc()
	logger.Info("User signed up successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
	return user, nil
}

func validateSignup(email, password, role string) error {
	var fields []apperrors.FieldError
	if err := validate.Var(email, "required,email"); err != nil {
		fields = append(fields, apperrors.Field("email", "must be a valid email"))
	}
	if utf8.RuneCountInString(password) < util.MinPasswordLength {
		fields = append(fields, apperrors.Field("password", "must be at least 6 characters"))
	} else if len(password) > util.MaxPasswordBytes {
		fields = append(fields, apperrors.Field("password", "must be at most 72 bytes"))
	}
	if !policy.ValidRole(role) {
		fields = append(fields, apperrors.Field("role", "must be one of: admin customer"))
	}
	if len(fields) > 0 {
		return apperrors.Validation(apperrors.ValidationInvalidInput, "Invalid signup data", fields...)
	}
	return nil
}

func (s *authService) Login(email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(email)
	logger.Info("Attempting user login", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
			return nil, "", ErrInvalidCredentials
		}
		logger.Error("Failed to find user during login", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", apperrors.ParseDBError(err, "user")
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := util.GenerateToken(user.ID, user.Email, string(user.Role), s.jwtSecret, s.expiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", apperrors.Internal("failed to issue token", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, token, nil
}

func (s *authService) Verify(ctx context.Context, token string) (*policy.Identity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperrors.Storage("failed to check token revocation", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return &policy.Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

func (s *authService) parse(token string) (*util.Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		if errors.Is(err, util.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid.Wrap(err)
	}
	return claims, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if s.revoker == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		logger.Error("Failed to revoke token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return apperrors.Storage("failed to revoke token", err)
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to get user by ID", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, apperrors.ParseDBError(err, "user")
	}
	return user, nil
}
