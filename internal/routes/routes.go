package routes

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/craftfolio/craftfolio"
	"github.com/craftfolio/craftfolio/internal/app"
	"github.com/craftfolio/craftfolio/internal/handler"
	"github.com/craftfolio/craftfolio/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler()
	auth := handler.NewAuthHandler(app.SessionService)
	dashboard := handler.NewDashboardHandler(app.PortfolioService, app.ProfileService)
	public := handler.NewPublicHandler(app.PortfolioService, app.Markdown)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Static files
	sub, err := fs.Sub(craftfolio.AssetsFS, "assets")
	if err != nil {
		slog.Error("failed to open embedded assets", "error", err)
	}
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(sub))))

	mux.HandleFunc("GET /healthz", home.Health)

	// Guest pages
	mux.HandleFunc("GET /{$}", middleware.RequireGuest(home.HomePage))
	mux.HandleFunc("GET /login", middleware.RequireGuest(auth.LoginPage))
	mux.HandleFunc("GET /signup", middleware.RequireGuest(auth.SignupPage))

	// Auth actions (rate limited)
	rateLimiter := middleware.RateLimitAuth(app.AuthLimiter)
	mux.HandleFunc("POST /login", rateLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /signup", rateLimiter(middleware.RequireGuest(auth.Signup)))
	mux.HandleFunc("POST /logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/dashboard/*)
	// ============================================================================

	mux.HandleFunc("GET /dashboard", middleware.RequireAuth(dashboard.DashboardPage))
	mux.HandleFunc("POST /dashboard/items", middleware.RequireAuth(dashboard.AddItem))
	mux.HandleFunc("POST /dashboard/items/{id}/delete", middleware.RequireAuth(dashboard.DeleteItem))
	mux.HandleFunc("DELETE /dashboard/items/{id}", middleware.RequireAuth(dashboard.DeleteItem))
	mux.HandleFunc("POST /dashboard/profile", middleware.RequireAuth(dashboard.SaveProfile))
	mux.HandleFunc("POST /dashboard/avatar", middleware.RequireAuth(dashboard.UploadAvatar))

	// ============================================================================
	// PUBLIC PORTFOLIOS & FALLBACK
	// ============================================================================

	mux.HandleFunc("GET /{username}", public.ProfilePage)
	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (needed by SecurityHeaders for image hosts)
		middleware.NonceMiddleware, // CSP nonce, before SecurityHeaders
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.SessionMiddleware(app.SessionService),
		middleware.WithURLPath,
	)

	return handler
}
