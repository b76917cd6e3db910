package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/makerloft/craftfolio-backend/internal/audit"
	"github.com/makerloft/craftfolio-backend/internal/auth"
	"github.com/makerloft/craftfolio-backend/internal/files"
	"github.com/makerloft/craftfolio-backend/internal/jwt"
	"github.com/makerloft/craftfolio-backend/internal/portfolio"
	"github.com/makerloft/craftfolio-backend/internal/rbac"
	"github.com/makerloft/craftfolio-backend/internal/validation"
)

// Server represents HTTP server
type Server struct {
	authService      *auth.Service
	filesService     *files.Service
	portfolioService *portfolio.Service
	auditService     *audit.Service
	jwtManager       *jwt.JWTManager
	rbac             *rbac.RBAC
}

// NewServer creates a new HTTP server
func NewServer(authService *auth.Service, filesService *files.Service, portfolioService *portfolio.Service, auditService *audit.Service, jwtManager *jwt.JWTManager, rbacManager *rbac.RBAC) *Server {
	return &Server{
		authService:      authService,
		filesService:     filesService,
		portfolioService: portfolioService,
		auditService:     auditService,
		jwtManager:       jwtManager,
		rbac:             rbacManager,
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// validateRequest validates and decodes a request struct
func (s *Server) validateRequest(r *http.Request, req interface{}) error {
	return json.NewDecoder(r.Body).Decode(req)
}

// requirePermission resolves claims from context and checks the permission.
// A nil return means the response has already been written.
func (s *Server) requirePermission(w http.ResponseWriter, r *http.Request, permission rbac.Permission) *jwt.Claims {
	claims, ok := GetUserClaims(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "Authentication required")
		return nil
	}
	if !s.rbac.CheckPermissionWithRole(rbac.Role(claims.Role), permission) {
		s.writeError(w, http.StatusForbidden, "Permission denied")
		return nil
	}
	return claims
}

// Health handles health check requests
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: "1.0"})
}

// Auth Handlers

// Register handles user registration
// @Summary		Register a new user
// @Description	Register a new user with email, password, full name and optional role
// @Tags		auth
// @Accept		json
// @Produce	json
// @Param		request	body		RegisterRequest	true	"Registration request"
// @Success	201	{object}	RegisterResponse
// @Failure	400	{object}	ErrorResponse
// @Failure	409	{object}	ErrorResponse
// @Router		/auth/register [post]
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	resp, err := s.authService.Register(r.Context(), &auth.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		if validation.IsValidationError(err) {
			s.writeError(w, http.StatusBadRequest, err.Error())
		} else if err.Error() == "email already exists" {
			s.writeError(w, http.StatusConflict, err.Error())
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusCreated, RegisterResponse{
		UserID:  resp.UserID,
		Message: resp.Message,
	})
}

// VerifyEmail handles email verification
// @Summary		Verify user email
// @Tags		auth
// @Accept		json
// @Produce	json
// @Param		request	body		VerifyEmailRequest	true	"Email verification request"
// @Success	200		{object}	VerifyEmailResponse
// @Failure	400		{object}	ErrorResponse
// @Router		/auth/verify-email [post]
func (s *Server) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	resp, err := s.authService.VerifyEmail(r.Context(), &auth.VerifyEmailRequest{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		errorMsg := err.Error()
		if strings.Contains(errorMsg, "invalid verification code") ||
			strings.Contains(errorMsg, "verification code expired") ||
			strings.Contains(errorMsg, "user not found") {
			s.writeError(w, http.StatusBadRequest, errorMsg)
		} else {
			s.writeError(w, http.StatusInternalServerError, errorMsg)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, VerifyEmailResponse{
		Message: resp.Message,
		Success: resp.Success,
	})
}

// Login handles user login
// @Summary		User login
// @Tags		auth
// @Accept		json
// @Produce	json
// @Param		request	body		LoginRequest	true	"Login request"
// @Success	200		{object}	LoginResponse
// @Failure	401		{object}	ErrorResponse
// @Router		/auth/login [post]
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	resp, err := s.authService.Login(r.Context(), &auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User: &UserInfo{
			UserID:        resp.User.UserID,
			Email:         resp.User.Email,
			FullName:      resp.User.FullName,
			Role:          resp.User.Role,
			EmailVerified: resp.User.EmailVerified,
			CreatedAt:     resp.User.CreatedAt,
			UpdatedAt:     resp.User.UpdatedAt,
		},
	})
}

// RefreshToken handles token refresh
// @Summary		Refresh access token
// @Tags		auth
// @Accept		json
// @Produce	json
// @Param		request	body		RefreshTokenRequest	true	"Refresh token request"
// @Success	200		{object}	RefreshTokenResponse
// @Failure	401		{object}	ErrorResponse
// @Router		/auth/refresh [post]
func (s *Server) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	resp, err := s.authService.RefreshToken(r.Context(), &auth.RefreshTokenRequest{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, RefreshTokenResponse{AccessToken: resp.AccessToken})
}

// GetProfile returns the authenticated user's profile
// @Summary		Get user profile
// @Tags		auth
// @Produce	json
// @Success	200	{object}	UserInfo
// @Failure	401	{object}	ErrorResponse
// @Router		/auth/profile [get]
// @Security	BearerAuth
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := s.requirePermission(w, r, rbac.PermissionUserViewProfile)
	if claims == nil {
		return
	}

	user, err := s.authService.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, UserInfo{
		UserID:        user.UserID,
		Email:         user.Email,
		FullName:      user.FullName,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	})
}

// Upload Handlers

// CreateUploadIntent reserves a single upload slot
// @Summary		Create an upload intent
// @Description	Reserve an upload and receive a pre-signed PUT URL for the staging area
// @Tags		uploads
// @Accept		json
// @Produce	json
// @Param		request	body		UploadIntentRequest	true	"Upload intent request"
// @Success	201	{object}	UploadIntentResponse
// @Failure	400	{object}	ErrorResponse
// @Router		/uploads/intent [post]
// @Security	BearerAuth
func (s *Server) CreateUploadIntent(w http.ResponseWriter, r *http.Request) {
	claims := s.requirePermission(w, r, rbac.PermissionFileUpload)
	if claims == nil {
		return
	}

	var req UploadIntentRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	intent, err := s.filesService.CreateUploadIntent(r.Context(), claims.UserID, req.ContentType, req.OriginalName)
	if err != nil {
		if validation.IsValidationError(err) {
			s.writeError(w, http.StatusBadRequest, err.Error())
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusCreated, UploadIntentResponse{
		UploadURL: intent.UploadURL,
		Key:       intent.Key,
		ID:        intent.ID,
	})
}

// CreateUploadIntents reserves a batch of upload slots
// @Summary		Create upload intents in bulk
// @Tags		uploads
// @Accept		json
// @Produce	json
// @Param		request	body		UploadIntentsRequest	true	"Bulk upload intent request"
// @Success	201	{object}	UploadIntentsResponse
// @Failure	400	{object}	ErrorResponse
// @Router		/uploads/intents [post]
// @Security	BearerAuth
func (s *Server) CreateUploadIntents(w http.ResponseWriter, r *http.Request) {
	claims := s.requirePermission(w, r, rbac.PermissionFileUpload)
	if claims == nil {
		return
	}

	var req UploadIntentsRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	intents, err := s.filesService.CreateUploadIntents(r.Context(), claims.UserID, req.ContentType, req.OriginalNames, req.Count)
	if err != nil {
		if validation.IsValidationError(err) {
			s.writeError(w, http.StatusBadRequest, err.Error())
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	uploads := make([]UploadIntentResponse, 0, len(intents))
	for _, intent := range intents {
		uploads = append(uploads, UploadIntentResponse{Key: intent.Key, ID: intent.ID})
	}

	s.writeJSON(w, http.StatusCreated, UploadIntentsResponse{Uploads: uploads})
}

// Portfolio Handlers

// SavePortfolioItem creates or updates a portfolio item
// @Summary		Save a portfolio item
// @Description	Create or update a portfolio item; referenced uploads are promoted to durable storage
// @Tags		portfolio
// @Accept		json
// @Produce	json
// @Param		request	body		SavePortfolioItemRequest	true	"Portfolio item"
// @Success	200	{object}	models.PortfolioItem
// @Failure	400	{object}	ErrorResponse
// @Router		/portfolio [post]
// @Security	BearerAuth
func (s *Server) SavePortfolioItem(w http.ResponseWriter, r *http.Request) {
	claims := s.requirePermission(w, r, rbac.PermissionPortfolioEdit)
	if claims == nil {
		return
	}

	var req SavePortfolioItemRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	item, err := s.portfolioService.SaveItem(r.Context(), &portfolio.SaveItemRequest{
		ItemID:       req.ItemID,
		OwnerID:      claims.UserID,
		Title:        req.Title,
		ContentHTML:  req.ContentHTML,
		ImageFileIDs: req.ImageFileIDs,
		ImageKeys:    req.ImageKeys,
	})
	if err != nil {
		if validation.IsValidationError(err) {
			s.writeError(w, http.StatusBadRequest, err.Error())
		} else if strings.Contains(err.Error(), "not found") {
			s.writeError(w, http.StatusNotFound, err.Error())
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusOK, item)
}

// GetPortfolioItem fetches one portfolio item
// @Summary		Get a portfolio item
// @Tags		portfolio
// @Produce	json
// @Param		id	path		string	true	"Item ID"
// @Success	200	{object}	models.PortfolioItem
// @Failure	404	{object}	ErrorResponse
// @Router		/portfolio/{id} [get]
func (s *Server) GetPortfolioItem(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")
	if itemID == "" {
		s.writeError(w, http.StatusBadRequest, "Item ID is required")
		return
	}

	item, err := s.portfolioService.GetItem(r.Context(), itemID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, item)
}

// ListPortfolioItems lists portfolio items for an owner
// @Summary		List portfolio items
// @Tags		portfolio
// @Produce	json
// @Param		owner_id	query		string	true	"Owner ID"
// @Success	200	{array}	models.PortfolioItem
// @Failure	400	{object}	ErrorResponse
// @Router		/portfolio [get]
func (s *Server) ListPortfolioItems(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		s.writeError(w, http.StatusBadRequest, "owner_id query parameter is required")
		return
	}

	items, err := s.portfolioService.ListItems(r.Context(), ownerID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, items)
}

// DuplicatePortfolioItem forks a portfolio item with fresh file copies
// @Summary		Duplicate a portfolio item
// @Tags		portfolio
// @Produce	json
// @Param		id	path		string	true	"Item ID"
// @Success	201	{object}	models.PortfolioItem
// @Failure	404	{object}	ErrorResponse
// @Router		/portfolio/{id}/duplicate [post]
// @Security	BearerAuth
func (s *Server) DuplicatePortfolioItem(w http.ResponseWriter, r *http.Request) {
	claims := s.requirePermission(w, r, rbac.PermissionPortfolioDuplicate)
	if claims == nil {
		return
	}

	itemID := r.PathValue("id")
	if itemID == "" {
		s.writeError(w, http.StatusBadRequest, "Item ID is required")
		return
	}

	item, err := s.portfolioService.DuplicateItem(r.Context(), itemID, claims.UserID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			s.writeError(w, http.StatusNotFound, err.Error())
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusCreated, item)
}

// DeletePortfolioItem removes a portfolio item and its files
// @Summary		Delete a portfolio item
// @Tags		portfolio
// @Param		id	path		string	true	"Item ID"
// @Success	204
// @Failure	404	{object}	ErrorResponse
// @Router		/portfolio/{id} [delete]
// @Security	BearerAuth
func (s *Server) DeletePortfolioItem(w http.ResponseWriter, r *http.Request) {
	claims := s.requirePermission(w, r, rbac.PermissionPortfolioDelete)
	if claims == nil {
		return
	}

	itemID := r.PathValue("id")
	if itemID == "" {
		s.writeError(w, http.StatusBadRequest, "Item ID is required")
		return
	}

	if err := s.portfolioService.DeleteItem(r.Context(), itemID, claims.UserID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			s.writeError(w, http.StatusNotFound, err.Error())
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Admin Handlers

// GetAuditLogs returns the audit trail
// @Summary		List audit logs
// @Tags		admin
// @Produce	json
// @Param		user_id		query	string	false	"Filter by user ID"
// @Param		action_type	query	string	false	"Filter by action type"
// @Param		result		query	string	false	"Filter by result"
// @Param		limit		query	int		false	"Max entries"
// @Success	200	{array}	models.AuditLog
// @Failure	403	{object}	ErrorResponse
// @Router		/admin/audit-logs [get]
// @Security	BearerAuth
func (s *Server) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	claims := s.requirePermission(w, r, rbac.PermissionAdminViewLogs)
	if claims == nil {
		return
	}

	filter := audit.Filter{
		UserID:     r.URL.Query().Get("user_id"),
		ActionType: r.URL.Query().Get("action_type"),
		Result:     r.URL.Query().Get("result"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		if from, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filter.From = &from
		}
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		if to, err := time.Parse(time.RFC3339, toStr); err == nil {
			filter.To = &to
		}
	}

	logs, err := s.auditService.ListAuditLogs(r.Context(), filter)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, logs)
}
