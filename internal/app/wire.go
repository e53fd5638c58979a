package app

import (
	"log/slog"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/guard"
	"github.com/courtside/platform/internal/handler"
	adminhandler "github.com/courtside/platform/internal/handler/admin"
	"github.com/courtside/platform/internal/infra"
	"github.com/courtside/platform/internal/ledger"
	"github.com/courtside/platform/internal/projection"
	"github.com/courtside/platform/internal/repository"
	"github.com/courtside/platform/internal/service"
	"github.com/go-chi/chi/v5"
)

// Repositories groups the storage implementations the router is built on.
type Repositories struct {
	AuthUsers     repository.AuthUserRepository
	Profiles      repository.ProfileRepository
	Games         repository.GameRepository
	Bookings      repository.BookingRepository
	Outbox        repository.OutboxRepository
	LoginAttempts repository.LoginAttemptRepository
}

// PostgresRepositories returns the pgx-backed repositories.
func PostgresRepositories() Repositories {
	return Repositories{
		AuthUsers:     repository.NewPgAuthUserRepository(),
		Profiles:      repository.NewPgProfileRepository(),
		Games:         repository.NewPgGameRepository(),
		Bookings:      repository.NewPgBookingRepository(),
		Outbox:        repository.NewPgOutboxRepository(),
		LoginAttempts: repository.NewPgLoginAttemptRepository(),
	}
}

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool         service.Pool
	Repos        Repositories
	Health       handler.Pinger
	Config       *infra.Config
	JWTMgr       *auth.JWTManager
	Revocations  auth.RevocationStore
	SlotStore    projection.Store
	BookingLimit *guard.RateLimiter
	LoginLimit   *guard.RateLimiter
	Logger       *slog.Logger
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	repos := deps.Repos
	cfg := deps.Config
	logger := deps.Logger

	// Ledger engine
	engine := ledger.NewEngine(repos.Bookings, repos.Outbox)

	// Services
	profileSvc := service.NewProfileService(pool, repos.Profiles, repos.Outbox, cfg.BootstrapAdminEmail, logger)
	lockout := guard.NewLockout(pool, repos.LoginAttempts, logger)
	authSvc := service.NewAuthService(pool, repos.AuthUsers, profileSvc, deps.JWTMgr, deps.Revocations, lockout, logger)
	catalogSvc := service.NewCatalogService(pool, repos.Games, repos.Outbox, logger)
	bookingSvc := service.NewBookingService(pool, engine, repos.Bookings, repos.Games,
		deps.SlotStore, cfg.SlotCacheTTL, cfg.SlotSchedule, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, profileSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	gameHandler := handler.NewGameHandler(catalogSvc, bookingSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)

	// Admin handlers
	bookingAdmin := adminhandler.NewBookingAdminHandler(bookingSvc)
	gameAdmin := adminhandler.NewGameAdminHandler(catalogSvc)
	profileAdmin := adminhandler.NewProfileAdminHandler(profileSvc)

	authn := auth.NewAuthenticator(deps.JWTMgr, deps.Revocations, logger)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(cfg.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(deps.Health))

	// Auth routes (no auth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.With(handler.RateLimit(deps.LoginLimit, "login")).Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authn.Require)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
			r.Get("/session", authHandler.Session)
		})
	})

	// Public routes; a bearer token upgrades the principal
	r.Group(func(r chi.Router) {
		r.Use(authn.Optional)

		r.Get("/profiles/{id}", profileHandler.Get)

		r.Route("/games", func(r chi.Router) {
			r.Get("/", gameHandler.ListActive)
			r.Get("/all", gameHandler.ListAll)
			r.Get("/{id}", gameHandler.Get)
			r.Get("/{id}/booked-slots", gameHandler.BookedSlots)
			r.Get("/{id}/available-slots", gameHandler.AvailableSlots)
		})
	})

	// Signed-in routes
	r.Group(func(r chi.Router) {
		r.Use(authn.Require)

		r.Get("/profiles/me", profileHandler.GetMe)
		r.Patch("/profiles/me", profileHandler.UpdateMe)

		r.Route("/bookings", func(r chi.Router) {
			r.With(handler.RateLimit(deps.BookingLimit, "bookings")).Post("/", bookingHandler.Create)
			r.Get("/", bookingHandler.List)
			r.Get("/{id}", bookingHandler.Get)
			r.Get("/{id}/history", bookingHandler.History)
			r.Post("/{id}/transition", bookingHandler.Transition)
		})
	})

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(authn.Require)
		r.Use(auth.RequireRole(domain.RoleAdmin))

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", bookingAdmin.ListAll)
			r.Delete("/{id}", bookingAdmin.Delete)
		})

		r.Route("/games", func(r chi.Router) {
			r.Post("/", gameAdmin.Create)
			r.Patch("/{id}", gameAdmin.SetActive)
		})

		r.Get("/profiles", profileAdmin.List)
	})

	return r
}
