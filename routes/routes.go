package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/skillboard/backend/app"
	"github.com/upb/skillboard/backend/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Actor attribution for change-log rows
	r.Use(deps.ActorMiddleware.ExtractActor)

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	personHandler := handlers.NewPersonHandler(deps.Directory, deps.Logger)
	orgHandler := handlers.NewOrganizationHandler(deps.Directory, deps.Logger)
	skillHandler := handlers.NewSkillHandler(deps.Directory, deps.Logger)
	applicationHandler := handlers.NewSkillApplicationHandler(deps.Directory, deps.Logger)
	activityHandler := handlers.NewActivityHandler(deps.Timeline, deps.Logger)
	streamHandler := handlers.NewStreamHandler(deps.Timeline, deps.Logger)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", handlers.StatusHandler(deps))

		// Activity feed
		r.Route("/activity", func(r chi.Router) {
			r.Get("/", activityHandler.HandleFeed)
			r.Get("/stream", streamHandler.HandleStream)
			r.Get("/{entityType}/{id}", activityHandler.HandleEntityFeed)
		})

		// People
		r.Route("/people", func(r chi.Router) {
			r.Get("/", personHandler.HandleList)
			r.Post("/", personHandler.HandleCreate)
			r.Get("/{id}", personHandler.HandleGet)
			r.Patch("/{id}", personHandler.HandleUpdate)
			r.Delete("/{id}", personHandler.HandleDelete)
			r.Get("/{id}/skill-applications", applicationHandler.HandleListByPerson)
		})

		// Organizations
		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", orgHandler.HandleList)
			r.Post("/", orgHandler.HandleCreate)
			r.Get("/{id}", orgHandler.HandleGet)
			r.Patch("/{id}", orgHandler.HandleUpdate)
			r.Delete("/{id}", orgHandler.HandleDelete)
		})

		// Skills
		r.Route("/skills", func(r chi.Router) {
			r.Get("/", skillHandler.HandleList)
			r.Post("/", skillHandler.HandleCreate)
			r.Get("/{id}", skillHandler.HandleGet)
			r.Patch("/{id}", skillHandler.HandleUpdate)
			r.Delete("/{id}", skillHandler.HandleDelete)
		})

		// Skill applications
		r.Route("/skill-applications", func(r chi.Router) {
			r.Post("/", applicationHandler.HandleCreate)
			r.Delete("/{id}", applicationHandler.HandleDelete)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
