package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/makerloft/craftfolio-backend/internal/email"
	jwtmanager "github.com/makerloft/craftfolio-backend/internal/jwt"
	"github.com/makerloft/craftfolio-backend/internal/rbac"
	"github.com/makerloft/craftfolio-backend/internal/validation"
	"github.com/makerloft/craftfolio-backend/internal/ydb"
)

// Service implements account registration, verification and login.
type Service struct {
	db         ydb.Database
	jwtManager *jwtmanager.JWTManager
	rbac       *rbac.RBAC
	email      *email.Client
	log        *slog.Logger
}

func NewService(db ydb.Database, jwtManager *jwtmanager.JWTManager, rbacManager *rbac.RBAC, emailClient *email.Client, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:         db,
		jwtManager: jwtManager,
		rbac:       rbacManager,
		email:      emailClient,
		log:        log,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
}

type RegisterResponse struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Register creates an account. New accounts default to the freelancer role;
// admin accounts are never self-registered.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if err := validation.ValidateEmailField(req.Email, "email"); err != nil {
		return nil, err
	}
	if len(req.Password) < 8 {
		return nil, validation.ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}

	role := rbac.Role(req.Role)
	if req.Role == "" {
		role = rbac.RoleFreelancer
	}
	if role == rbac.RoleAdmin || !s.rbac.IsValidRole(role) {
		return nil, validation.ValidationError{Field: "role", Message: "must be freelancer or client"}
	}

	existingUser, err := s.db.GetUserByEmail(ctx, req.Email)
	if err == nil && existingUser != nil {
		return nil, fmt.Errorf("email already exists")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verificationCode, err := email.GenerateVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}
	verificationExpiresAt := time.Now().Add(24 * time.Hour)

	user := &ydb.User{
		UserID:                uuid.New().String(),
		Email:                 req.Email,
		PasswordHash:          string(passwordHash),
		FullName:              req.FullName,
		Role:                  string(role),
		EmailVerified:         false,
		VerificationCode:      &verificationCode,
		VerificationExpiresAt: &verificationExpiresAt,
		CreatedAt:             time.Now(),
		UpdatedAt:             time.Now(),
		IsActive:              true,
	}

	if err := s.db.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Verification mail is best effort; registration stands either way.
	if s.email.IsConfigured() {
		if err := s.email.SendVerificationEmail(ctx, req.Email, verificationCode); err != nil {
			s.log.Warn("failed to send verification email", "error", err, "user_id", user.UserID)
		}
	}

	return &RegisterResponse{
		UserID:  user.UserID,
		Message: "Registration successful. Please check your email for verification.",
	}, nil
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type VerifyEmailResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// VerifyEmail confirms a signup code and activates the address.
func (s *Service) VerifyEmail(ctx context.Context, req *VerifyEmailRequest) (*VerifyEmailResponse, error) {
	user, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	if user.VerificationCode == nil || *user.VerificationCode != req.Code {
		return nil, fmt.Errorf("invalid verification code")
	}
	if user.VerificationExpiresAt == nil || time.Now().After(*user.VerificationExpiresAt) {
		return nil, fmt.Errorf("verification code expired")
	}

	user.EmailVerified = true
	user.VerificationCode = nil
	user.VerificationExpiresAt = nil
	user.UpdatedAt = time.Now()

	if err := s.db.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &VerifyEmailResponse{
		Message: "Email verified successfully",
		Success: true,
	}, nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	User         *UserInfo `json:"user"`
}

type UserInfo struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

// Login checks credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user account is deactivated")
	}

	accessToken, refreshToken, err := s.jwtManager.GenerateTokenPair(user.UserID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         userInfo(user),
	}, nil
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// RefreshToken mints a new access token from a valid refresh token.
func (s *Service) RefreshToken(ctx context.Context, req *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	accessToken, err := s.jwtManager.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}
	return &RefreshTokenResponse{AccessToken: accessToken}, nil
}

// GetProfile returns the account behind userID.
func (s *Service) GetProfile(ctx context.Context, userID string) (*UserInfo, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return userInfo(user), nil
}

// ValidateToken verifies a JWT and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*jwtmanager.Claims, error) {
	return s.jwtManager.ValidateToken(tokenString)
}

// CheckPermission checks a permission against the user's stored role.
func (s *Service) CheckPermission(ctx context.Context, userID string, permission rbac.Permission) (bool, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	return s.rbac.CheckPermissionWithRole(rbac.Role(user.Role), permission), nil
}

func userInfo(user *ydb.User) *UserInfo {
	return &UserInfo{
		UserID:        user.UserID,
		Email:         user.Email,
		FullName:      user.FullName,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt.Unix(),
		UpdatedAt:     user.UpdatedAt.Unix(),
	}
}
