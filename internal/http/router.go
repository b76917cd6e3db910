package http

import (
	"net/http"

	"github.com/makerloft/craftfolio-backend/internal/jwt"
)

// SetupRouter creates and configures HTTP router
func SetupRouter(server *Server, jwtManager *jwt.JWTManager) http.Handler {
	mux := http.NewServeMux()

	authRequired := func(next http.Handler) http.Handler {
		return AuthMiddleware(jwtManager, next)
	}

	// Health check endpoint (no auth required)
	mux.Handle("/health", chainMiddleware(server.Health, methodMiddleware("GET")))

	// Auth routes (no auth required)
	mux.HandleFunc("/api/v1/auth/register", chainMiddleware(server.Register, methodMiddleware("POST"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware))
	mux.HandleFunc("/api/v1/auth/login", chainMiddleware(server.Login, methodMiddleware("POST"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware))
	mux.HandleFunc("/api/v1/auth/refresh", chainMiddleware(server.RefreshToken, methodMiddleware("POST"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware))
	mux.HandleFunc("/api/v1/auth/verify-email", chainMiddleware(server.VerifyEmail, methodMiddleware("POST"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware))

	// Protected auth routes
	mux.HandleFunc("/api/v1/auth/profile", chainMiddleware(server.GetProfile, methodMiddleware("GET"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, authRequired))

	// Upload routes
	mux.HandleFunc("/api/v1/uploads/intent", chainMiddleware(server.CreateUploadIntent, methodMiddleware("POST"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authRequired))
	mux.HandleFunc("/api/v1/uploads/intents", chainMiddleware(server.CreateUploadIntents, methodMiddleware("POST"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authRequired))

	// Portfolio routes
	mux.HandleFunc("POST /api/v1/portfolio", chainMiddleware(server.SavePortfolioItem, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authRequired))
	mux.HandleFunc("GET /api/v1/portfolio", chainMiddleware(server.ListPortfolioItems, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware))
	mux.HandleFunc("GET /api/v1/portfolio/{id}", chainMiddleware(server.GetPortfolioItem, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware))
	mux.HandleFunc("POST /api/v1/portfolio/{id}/duplicate", chainMiddleware(server.DuplicatePortfolioItem, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, authRequired))
	mux.HandleFunc("DELETE /api/v1/portfolio/{id}", chainMiddleware(server.DeletePortfolioItem, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, authRequired))

	// Admin routes
	mux.HandleFunc("/api/v1/admin/audit-logs", chainMiddleware(server.GetAuditLogs, methodMiddleware("GET"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, authRequired))

	return mux
}

// chainMiddleware applies multiple middleware to a handler function
func chainMiddleware(handler http.HandlerFunc, middleware ...func(http.Handler) http.Handler) http.HandlerFunc {
	h := http.Handler(handler)
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}
}

// methodMiddleware creates middleware that checks for specific HTTP method
func methodMiddleware(method string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
