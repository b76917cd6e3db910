package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/makerloft/craftfolio-backend/internal/config"
	"github.com/makerloft/craftfolio-backend/internal/email"
	jwtmanager "github.com/makerloft/craftfolio-backend/internal/jwt"
	"github.com/makerloft/craftfolio-backend/internal/rbac"
	"github.com/makerloft/craftfolio-backend/internal/ydb"
	ydbmocks "github.com/makerloft/craftfolio-backend/internal/ydb/mocks"
)

func setupAuthService() (*Service, *ydbmocks.Database) {
	mockDB := new(ydbmocks.Database)

	jwtManager := jwtmanager.NewJWTManager(&config.Config{JWTSecretKey: "test-secret"})
	realRBAC := rbac.NewRBAC()
	// Empty config keeps the email client unconfigured, so no mail is sent.
	emailClient := email.NewClient(&config.Config{})

	service := NewService(mockDB, jwtManager, realRBAC, emailClient, nil)
	return service, mockDB
}

func TestService_Register_Success(t *testing.T) {
	service, mockDB := setupAuthService()
	ctx := context.Background()

	req := &RegisterRequest{
		Email:    "maker@example.com",
		Password: "password123",
		FullName: "Test Maker",
	}

	mockDB.On("GetUserByEmail", ctx, "maker@example.com").Return(nil, errors.New("not found"))

	var created *ydb.User
	mockDB.On("CreateUser", ctx, mock.MatchedBy(func(u *ydb.User) bool {
		created = u
		return u.Email == "maker@example.com"
	})).Return(nil)

	resp, err := service.Register(ctx, req)

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, created.UserID, resp.UserID)

	// Defaults applied by registration.
	assert.Equal(t, string(rbac.RoleFreelancer), created.Role)
	assert.False(t, created.EmailVerified)
	assert.True(t, created.IsActive)
	assert.NotNil(t, created.VerificationCode)
	assert.NotNil(t, created.VerificationExpiresAt)

	// The password is stored hashed, never in clear.
	assert.NotEqual(t, "password123", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")))

	mockDB.AssertExpectations(t)
}

func TestService_Register_UserAlreadyExists(t *testing.T) {
	service, mockDB := setupAuthService()
	ctx := context.Background()

	mockDB.On("GetUserByEmail", ctx, "existing@example.com").Return(&ydb.User{
		UserID: "user-123",
		Email:  "existing@example.com",
	}, nil)

	resp, err := service.Register(ctx, &RegisterRequest{
		Email:    "existing@example.com",
		Password: "password123",
		FullName: "Test",
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, "email already exists", err.Error())
	mockDB.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestService_Register_RejectsAdminRole(t *testing.T) {
	service, mockDB := setupAuthService()

	resp, err := service.Register(context.Background(), &RegisterRequest{
		Email:    "maker@example.com",
		Password: "password123",
		FullName: "Test",
		Role:     "admin",
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	mockDB.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestService_Register_RejectsShortPassword(t *testing.T) {
	service, mockDB := setupAuthService()

	resp, err := service.Register(context.Background(), &RegisterRequest{
		Email:    "maker@example.com",
		Password: "short",
		FullName: "Test",
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	mockDB.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
}

func TestService_VerifyEmail_Success(t *testing.T) {
	service, mockDB := setupAuthService()
	ctx := context.Background()

	code := "abc123"
	expires := time.Now().Add(time.Hour)
	mockDB.On("GetUserByEmail", ctx, "maker@example.com").Return(&ydb.User{
		UserID:                "user-1",
		Email:                 "maker@example.com",
		VerificationCode:      &code,
		VerificationExpiresAt: &expires,
	}, nil)
	mockDB.On("UpdateUser", ctx, mock.MatchedBy(func(u *ydb.User) bool {
		return u.EmailVerified && u.VerificationCode == nil
	})).Return(nil)

	resp, err := service.VerifyEmail(ctx, &VerifyEmailRequest{Email: "maker@example.com", Code: "abc123"})

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	mockDB.AssertExpectations(t)
}

func TestService_VerifyEmail_WrongCode(t *testing.T) {
	service, mockDB := setupAuthService()
	ctx := context.Background()

	code := "abc123"
	expires := time.Now().Add(time.Hour)
	mockDB.On("GetUserByEmail", ctx, "maker@example.com").Return(&ydb.User{
		VerificationCode:      &code,
		VerificationExpiresAt: &expires,
	}, nil)

	resp, err := service.VerifyEmail(ctx, &VerifyEmailRequest{Email: "maker@example.com", Code: "wrong"})

	assert.Error(t, err)
	assert.Nil(t, resp)
	mockDB.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestService_VerifyEmail_ExpiredCode(t *testing.T) {
	service, mockDB := setupAuthService()
	ctx := context.Background()

	code := "abc123"
	expires := time.Now().Add(-time.Minute)
	mockDB.On("GetUserByEmail", ctx, "maker@example.com").Return(&ydb.User{
		VerificationCode:      &code,
		VerificationExpiresAt: &expires,
	}, nil)

	resp, err := service.VerifyEmail(ctx, &VerifyEmailRequest{Email: "maker@example.com", Code: "abc123"})

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestService_Login_Success(t *testing.T) {
	service, mockDB := setupAuthService()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	mockDB.On("GetUserByEmail", ctx, "maker@example.com").Return(&ydb.User{
		UserID:       "user-1",
		Email:        "maker@example.com",
		PasswordHash: string(hash),
		Role:         string(rbac.RoleFreelancer),
		IsActive:     true,
	}, nil)

	resp, err := service.Login(ctx, &LoginRequest{Email: "maker@example.com", Password: "password123"})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "user-1", resp.User.UserID)

	// Issued tokens carry the user's identity and role.
	claims, err := service.ValidateToken(resp.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, string(rbac.RoleFreelancer), claims.Role)
}

func TestService_Login_WrongPassword(t *testing.T) {
	service, mockDB := setupAuthService()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	mockDB.On("GetUserByEmail", ctx, "maker@example.com").Return(&ydb.User{
		UserID:       "user-1",
		PasswordHash: string(hash),
		IsActive:     true,
	}, nil)

	resp, err := service.Login(ctx, &LoginRequest{Email: "maker@example.com", Password: "nope"})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestService_Login_DeactivatedAccount(t *testing.T) {
	service, mockDB := setupAuthService()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	mockDB.On("GetUserByEmail", ctx, "maker@example.com").Return(&ydb.User{
		UserID:       "user-1",
		PasswordHash: string(hash),
		IsActive:     false,
	}, nil)

	resp, err := service.Login(ctx, &LoginRequest{Email: "maker@example.com", Password: "password123"})

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestService_RefreshToken(t *testing.T) {
	service, mockDB := setupAuthService()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	mockDB.On("GetUserByEmail", ctx, "maker@example.com").Return(&ydb.User{
		UserID:       "user-1",
		Email:        "maker@example.com",
		PasswordHash: string(hash),
		Role:         string(rbac.RoleFreelancer),
		IsActive:     true,
	}, nil)

	login, err := service.Login(ctx, &LoginRequest{Email: "maker@example.com", Password: "password123"})
	assert.NoError(t, err)

	resp, err := service.RefreshToken(ctx, &RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.NoError(t, err)

	claims, err := service.ValidateToken(resp.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestService_RefreshToken_RejectsGarbage(t *testing.T) {
	service, _ := setupAuthService()

	resp, err := service.RefreshToken(context.Background(), &RefreshTokenRequest{RefreshToken: "not-a-token"})

	assert.Error(t, err)
	assert.Nil(t, resp)
}
