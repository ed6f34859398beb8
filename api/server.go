/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. CORS:          Cross-origin requests for the web client
  2. RequestLogger: Structured request logs (httplog over slog, ECS schema)
  3. CleanPath:     Normalized URLs
  4. Recoverer:     Panic recovery (500 instead of crash)
  5. Heartbeat:     Liveness probe on /healthz

ROUTE GROUPS:
  /api/attendance/*     Punches, records, monthly summaries
  /api/leave/*          Balances and the request workflow
  /api/holidays         Holiday calendar

SECURITY NOTE:
  No authentication middleware. Identity and tenant scoping are owned
  by the surrounding platform gateway.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterOptions tune the middleware stack.
type RouterOptions struct {
	// AllowedOrigins for CORS; defaults to the local dev client.
	AllowedOrigins []string

	// Logger receives request logs; a JSON slog logger on stdout is
	// built when nil.
	Logger *slog.Logger
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if opts.Logger == nil {
		logFormat := httplog.SchemaECS.Concise(false)
		opts.Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			ReplaceAttr: logFormat.ReplaceAttr,
		})).With(
			slog.String("app", "labor-engine"),
		)
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.CleanPath)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/healthz"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/attendance/{employeeId}", func(r chi.Router) {
			r.Post("/clock-in", h.ClockIn)
			r.Post("/break/start", h.StartBreak)
			r.Post("/break/end", h.EndBreak)
			r.Post("/clock-out", h.ClockOut)
			r.Get("/records", h.ListRecords)
			r.Get("/summary", h.MonthlySummary)
		})

		r.Route("/leave", func(r chi.Router) {
			r.Route("/{employeeId}", func(r chi.Router) {
				r.Get("/balance", h.GetBalance)
				r.Get("/requests", h.ListLeaveRequests)
				r.Post("/requests", h.SubmitLeaveRequest)
			})
			r.Route("/requests/{id}", func(r chi.Router) {
				r.Post("/approve", h.ApproveRequest)
				r.Post("/reject", h.RejectRequest)
				r.Post("/cancel", h.CancelRequest)
			})
		})

		r.Get("/holidays", h.ListHolidays)
	})

	return r
}
