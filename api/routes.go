package api

import (
	"net/http"

	"github.com/gorilla/mux"

	dbfs "github.com/garnizeh/interntrack/db"
	"github.com/garnizeh/interntrack/internal/config"
	"github.com/garnizeh/interntrack/internal/db"
	"github.com/garnizeh/interntrack/internal/repository/sqlite"
)

// SetupRoutes wires every handler onto a router backed by the given
// database. jobs may be nil, in which case recommendations always come
// from the sample catalogue. CORS wraps the router so preflight requests
// are answered before route matching.
func SetupRoutes(cfg *config.Config, version, buildTime string, db *db.DB, jobs JobSource) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(db, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	if db != nil {
		systemHandler.DB = db.GetConn()
	}
	userHandler := NewUserHandler(repo, repo, cfg.JWTSecret, cfg.TokenDuration).
		WithPasswordReset(cfg.ResetTokenDuration, nil, cfg.AllowInsecurePasswordReset)
	internshipHandler := NewInternshipHandler(repo)
	viewsHandler := NewViewsHandler(repo)
	recommendationsHandler := NewRecommendationsHandler(jobs, dbfs.SeedFiles)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")

	limiter := NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	accounts := r.PathPrefix("/v1/users").Subrouter()
	accounts.Use(limiter.Handler)
	accounts.HandleFunc("/register", userHandler.Register).Methods("POST")
	accounts.HandleFunc("/login", userHandler.Login).Methods("POST")
	accounts.HandleFunc("/forgot-password", userHandler.ForgotPassword).Methods("POST")
	accounts.HandleFunc("/reset-password", userHandler.ResetPassword).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// User endpoints
	apiV1.HandleFunc("/users/{id}", userHandler.GetUser).Methods("GET")
	apiV1.HandleFunc("/users/{id}", userHandler.UpdateUser).Methods("PATCH")
	apiV1.HandleFunc("/users/{id}", userHandler.DeleteUser).Methods("DELETE")

	// Internship endpoints
	apiV1.HandleFunc("/internships", internshipHandler.ListInternships).Methods("GET")
	apiV1.HandleFunc("/internships", internshipHandler.CreateInternship).Methods("POST")
	apiV1.HandleFunc("/internships/{id}", internshipHandler.GetInternship).Methods("GET")
	apiV1.HandleFunc("/internships/{id}", internshipHandler.UpdateInternship).Methods("PATCH")
	apiV1.HandleFunc("/internships/{id}", internshipHandler.DeleteInternship).Methods("DELETE")
	apiV1.HandleFunc("/internships/{id}/status", internshipHandler.UpdateStatus).Methods("PATCH")
	apiV1.HandleFunc("/internships/{id}/archive", internshipHandler.ArchiveInternship).Methods("PATCH")
	apiV1.HandleFunc("/internships/{id}/dismiss-follow-up", internshipHandler.DismissFollowUp).Methods("PATCH")
	apiV1.HandleFunc("/internships/{id}/follow-up", internshipHandler.UpdateFollowUp).Methods("PATCH")
	apiV1.HandleFunc("/internships/{id}/resume", internshipHandler.PutResume).Methods("PUT")
	apiV1.HandleFunc("/internships/{id}/resume", internshipHandler.GetResume).Methods("GET")

	// Derived views
	apiV1.HandleFunc("/views/table", viewsHandler.Table).Methods("GET")
	apiV1.HandleFunc("/views/follow-ups", viewsHandler.FollowUps).Methods("GET")
	apiV1.HandleFunc("/views/follow-ups/{id}/acknowledge", viewsHandler.Acknowledge).Methods("POST")
	apiV1.HandleFunc("/views/insights", viewsHandler.Insights).Methods("GET")

	apiV1.HandleFunc("/recommendations", recommendationsHandler.Recommend).Methods("GET")

	return CORSMiddlewareFor(cfg.CORSOrigin)(r)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Route not found", nil)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}
