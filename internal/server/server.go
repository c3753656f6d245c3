package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/YasNanNan2/FutariNote/internal/config"
	"github.com/YasNanNan2/FutariNote/internal/events"
	"github.com/YasNanNan2/FutariNote/internal/handlers"
	"github.com/YasNanNan2/FutariNote/internal/metrics"
	"github.com/YasNanNan2/FutariNote/internal/middleware"
	"github.com/YasNanNan2/FutariNote/internal/repository"
	"github.com/YasNanNan2/FutariNote/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	router      *chi.Mux
	config      config.Config
	rateLimiter *middleware.RateLimiter
}

func New(database *sql.DB, cfg config.Config, authService *services.AuthService) *Server {
	userRepo := repository.NewUserRepository(database)
	groupRepo := repository.NewGroupRepository(database)
	inviteRepo := repository.NewInviteRepository(database)
	taskRepo := repository.NewTaskRepository(database)
	goalRepo := repository.NewGoalRepository(database)
	stampRepo := repository.NewStampRepository(database)
	timelineRepo := repository.NewTimelineRepository(database)

	collector := metrics.NewCollector()
	hub := events.NewHub()

	inviteService := services.NewInviteService(inviteRepo, userRepo, collector)
	groupService := services.NewGroupService(groupRepo, userRepo, inviteRepo, collector)
	accountService := services.NewAccountService(groupRepo, userRepo, collector)
	taskService := services.NewTaskService(taskRepo, groupRepo, timelineRepo)
	stampService := services.NewStampService(stampRepo, groupRepo, timelineRepo, collector)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userRepo)
	groupHandler := handlers.NewGroupHandler(groupRepo, groupService, accountService, authService, hub)
	inviteHandler := handlers.NewInviteHandler(inviteService, cfg.BaseURL)
	taskHandler := handlers.NewTaskHandler(taskRepo, taskService, hub)
	goalHandler := handlers.NewGoalHandler(goalRepo, timelineRepo, hub)
	stampHandler := handlers.NewStampHandler(stampRepo, groupRepo, stampService, hub)
	timelineHandler := handlers.NewTimelineHandler(timelineRepo)
	eventsHandler := handlers.NewEventsHandler(hub)
	calendarHandler := handlers.NewCalendarHandler(taskRepo, groupRepo)

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())

	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", collector.Handler())

	router.Get("/login", authHandler.LoginPage)
	router.Get("/auth/callback", authHandler.Callback)
	router.Get("/logout", authHandler.Logout)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authService))

		r.Get("/api/me", userHandler.Me)
		r.Put("/api/me", userHandler.UpdateMe)

		r.Post("/api/invite", inviteHandler.Create)
		r.Get("/api/invite", inviteHandler.Mine)

		r.Group(func(r chi.Router) {
			r.Use(rateLimiter.Middleware())

			r.Get("/api/invite/{code}", inviteHandler.Validate)
			r.Post("/api/group/join", groupHandler.Join)
		})

		r.Post("/api/group/leave", groupHandler.Leave)
		r.Delete("/api/account", groupHandler.DeleteAccount)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireGroup)

			r.Get("/api/group", groupHandler.Get)

			r.Get("/api/tasks", taskHandler.List)
			r.Post("/api/tasks", taskHandler.Create)
			r.Put("/api/tasks/{id}", taskHandler.Update)
			r.Delete("/api/tasks/{id}", taskHandler.Delete)
			r.Post("/api/tasks/{id}/complete", taskHandler.Complete)
			r.Post("/api/tasks/{id}/uncomplete", taskHandler.Uncomplete)
			r.Post("/api/tasks/reconcile", taskHandler.Reconcile)

			r.Get("/api/goals", goalHandler.List)
			r.Post("/api/goals", goalHandler.Create)
			r.Put("/api/goals/{id}", goalHandler.Update)
			r.Delete("/api/goals/{id}", goalHandler.Delete)

			r.Get("/api/stamps", stampHandler.List)
			r.Post("/api/stamps", stampHandler.Send)
			r.Get("/api/stamps/totals", stampHandler.Totals)
			r.Get("/api/stamps/weekly", stampHandler.Weekly)

			r.Get("/api/timeline", timelineHandler.List)
			r.Get("/api/events", eventsHandler.Stream)
			r.Get("/api/calendar.ics", calendarHandler.Feed)
		})
	})

	server := &Server{
		router:      router,
		config:      cfg,
		rateLimiter: rateLimiter,
	}

	return server
}

func (server *Server) Router() http.Handler {
	return server.router
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address)
	return http.ListenAndServe(address, server.router)
}
