package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dentia/clinic-api/internal/ai"
	"github.com/dentia/clinic-api/internal/auth"
	"github.com/dentia/clinic-api/internal/cache"
	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/config"
	"github.com/dentia/clinic-api/internal/database"
	"github.com/dentia/clinic-api/internal/handlers"
	"github.com/dentia/clinic-api/internal/middleware"
	"github.com/dentia/clinic-api/internal/notify"
	"github.com/dentia/clinic-api/internal/repository"
	"github.com/dentia/clinic-api/internal/services"
	"github.com/dentia/clinic-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting clinic API")

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	// Initialize cache
	var cacheImpl cache.Cache
	if cfg.Cache.Enabled && cfg.Cache.Type == "redis" {
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		cacheImpl, err = cache.NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		log.Info().Msg("Redis cache initialized")
	} else {
		cacheImpl = cache.NewMemoryCache()
		log.Info().Msg("Memory cache initialized")
	}

	// Initialize repositories
	patientRepo := repository.NewPatientRepository(db)
	treatmentRepo := repository.NewTreatmentRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	financeRepo := repository.NewFinanceRepository(db)
	marketingRepo := repository.NewMarketingRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	inboxRepo := repository.NewInboxRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Clinic context resolution backed by the membership cache
	memberSource := repository.NewCachedMembershipSource(memberRepo, cacheImpl)
	resolver := clinicctx.NewResolver(memberSource, cfg.Auth.ClinicCookie)

	// Sessions
	sessions := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.SessionCookie, cfg.Auth.SessionTTL)

	// AI providers
	providers, err := ai.NewProviders(cfg.AI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure AI providers")
	}

	// Initialize services
	notificationService := services.NewNotificationService(notificationRepo)
	dispatcher := notify.NewDispatcher(cfg.Notify.Workers, notificationService, logger.Get())

	analyticsService := services.NewAnalyticsService(treatmentRepo, financeRepo, marketingRepo, patientRepo, cacheImpl)
	teamService := services.NewTeamService(memberRepo, invitationRepo, memberSource)
	inboxService := services.NewInboxService(inboxRepo, dispatcher)
	assistantService := services.NewAssistantService(providers, inboxRepo)

	// Dispatcher workers stop on shutdown
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	dispatcher.Start(workerCtx)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cacheImpl)
	patientHandler := handlers.NewPatientHandler(patientRepo)
	treatmentHandler := handlers.NewTreatmentHandler(treatmentRepo, catalogRepo, analyticsService)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo)
	financeHandler := handlers.NewFinanceHandler(financeRepo, analyticsService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	marketingHandler := handlers.NewMarketingHandler(marketingRepo, patientRepo)
	teamHandler := handlers.NewTeamHandler(teamService, auditRepo)
	auditHandler := handlers.NewAuditHandler(auditRepo)
	inboxHandler := handlers.NewInboxHandler(inboxService, assistantService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Compress(5))

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics)
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no authentication required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(sessions))

		// Invitation acceptance happens before the user has any clinic.
		r.Post("/invitations/{token}/accept", teamHandler.AcceptInvitation)
		r.Post("/invitations/{token}/reject", teamHandler.RejectInvitation)

		// Everything else runs inside a resolved clinic context.
		r.Group(func(r chi.Router) {
			r.Use(middleware.ClinicContext(resolver))

			r.Route("/patients", func(r chi.Router) {
				r.With(middleware.RequirePermission("patients.view")).Get("/", patientHandler.List)
				r.With(middleware.RequirePermission("patients.view")).Get("/{id}", patientHandler.Get)
				r.With(middleware.RequirePermission("patients.create")).Post("/", patientHandler.Create)
				r.With(middleware.RequirePermission("patients.edit")).Put("/{id}", patientHandler.Update)
				r.With(middleware.RequirePermission("patients.delete")).Delete("/{id}", patientHandler.Delete)
			})

			r.Route("/treatments", func(r chi.Router) {
				r.With(middleware.RequirePermission("treatments.view")).Get("/", treatmentHandler.List)
				r.With(middleware.RequirePermission("treatments.view")).Get("/{id}", treatmentHandler.Get)
				r.With(middleware.RequirePermission("treatments.create")).Post("/", treatmentHandler.Create)
				r.With(middleware.RequirePermission("treatments.edit")).Put("/{id}", treatmentHandler.Update)
				r.With(middleware.RequireAll("treatments.view", "treatments.mark_paid")).Post("/{id}/pay", treatmentHandler.MarkPaid)
				r.With(middleware.RequirePermission("treatments.delete")).Delete("/{id}", treatmentHandler.Delete)
			})

			r.Route("/services", func(r chi.Router) {
				r.With(middleware.RequirePermission("services.view")).Get("/", catalogHandler.ListServices)
				r.With(middleware.RequirePermission("services.view")).Get("/{id}", catalogHandler.GetService)
				r.With(middleware.RequirePermission("services.create")).Post("/", catalogHandler.CreateService)
				r.With(middleware.RequireAll("services.edit", "services.set_prices")).Put("/{id}", catalogHandler.UpdateService)
				r.With(middleware.RequirePermission("services.delete")).Delete("/{id}", catalogHandler.DeleteService)
			})

			r.Route("/supplies", func(r chi.Router) {
				r.With(middleware.RequirePermission("supplies.view")).Get("/", catalogHandler.ListSupplies)
				r.With(middleware.RequirePermission("supplies.create")).Post("/", catalogHandler.CreateSupply)
				r.With(middleware.RequireAny("supplies.edit", "supplies.manage_stock")).Put("/{id}", catalogHandler.UpdateSupply)
				r.With(middleware.RequirePermission("supplies.delete")).Delete("/{id}", catalogHandler.DeleteSupply)
			})

			r.Route("/categories", func(r chi.Router) {
				r.With(middleware.RequireAny("services.view", "expenses.view")).Get("/", catalogHandler.ListCategories)
				r.With(middleware.RequireAny("services.create", "expenses.create")).Post("/", catalogHandler.CreateCategory)
				r.With(middleware.RequireAny("services.delete", "expenses.delete")).Delete("/{id}", catalogHandler.DeleteCategory)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.With(middleware.RequirePermission("expenses.view")).Get("/", financeHandler.ListExpenses)
				r.With(middleware.RequirePermission("expenses.create")).Post("/", financeHandler.CreateExpense)
				r.With(middleware.RequirePermission("expenses.edit")).Put("/{id}", financeHandler.UpdateExpense)
				r.With(middleware.RequirePermission("expenses.delete")).Delete("/{id}", financeHandler.DeleteExpense)
			})

			r.Route("/fixed-costs", func(r chi.Router) {
				r.With(middleware.RequirePermission("fixed_costs.view")).Get("/", financeHandler.ListFixedCosts)
				r.With(middleware.RequirePermission("fixed_costs.create")).Post("/", financeHandler.CreateFixedCost)
				r.With(middleware.RequirePermission("fixed_costs.edit")).Put("/{id}", financeHandler.UpdateFixedCost)
				r.With(middleware.RequirePermission("fixed_costs.delete")).Delete("/{id}", financeHandler.DeleteFixedCost)
			})

			r.Route("/assets", func(r chi.Router) {
				r.With(middleware.RequirePermission("assets.view")).Get("/", financeHandler.ListAssets)
				r.With(middleware.RequirePermission("assets.view")).Get("/{id}/depreciation", financeHandler.AssetDepreciation)
				r.With(middleware.RequirePermission("assets.create")).Post("/", financeHandler.CreateAsset)
				r.With(middleware.RequirePermission("assets.edit")).Put("/{id}", financeHandler.UpdateAsset)
				r.With(middleware.RequirePermission("assets.delete")).Delete("/{id}", financeHandler.DeleteAsset)
			})

			r.Route("/settings/time", func(r chi.Router) {
				r.With(middleware.RequirePermission("settings.view")).Get("/", financeHandler.GetTimeSettings)
				r.With(middleware.RequirePermission("settings.edit")).Put("/", financeHandler.UpdateTimeSettings)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.With(middleware.RequirePermission("financial_reports.view")).Get("/summary", analyticsHandler.Summary)
				r.With(middleware.RequirePermission("break_even.view")).Get("/break-even", analyticsHandler.BreakEven)
				r.With(middleware.RequirePermission("financial_reports.view")).Get("/working-days", analyticsHandler.WorkingDays)
				r.With(middleware.RequirePermission("financial_reports.view")).Get("/predictions", analyticsHandler.Predictions)
				r.With(middleware.RequirePermission("campaigns.view")).Get("/marketing", analyticsHandler.MarketingOverview)
				r.With(middleware.RequirePermission("campaigns.view")).Get("/marketing/{id}", analyticsHandler.CampaignROI)
			})

			r.Route("/campaigns", func(r chi.Router) {
				r.With(middleware.RequirePermission("campaigns.view")).Get("/", marketingHandler.List)
				r.With(middleware.RequirePermission("campaigns.view")).Get("/{id}", marketingHandler.Get)
				r.With(middleware.RequirePermission("campaigns.create")).Post("/", marketingHandler.Create)
				r.With(middleware.RequirePermission("campaigns.edit")).Put("/{id}", marketingHandler.Update)
				r.With(middleware.RequirePermission("campaigns.delete")).Delete("/{id}", marketingHandler.Delete)
				r.With(middleware.RequireAll("campaigns.view", "patients.view")).Get("/{id}/patients", marketingHandler.ListPatients)
			})

			r.Route("/team", func(r chi.Router) {
				r.With(middleware.RequirePermission("team.view")).Get("/members", teamHandler.ListMembers)
				r.With(middleware.RequirePermission("team.edit_roles")).Put("/members/{userID}", teamHandler.UpdateMember)
				r.With(middleware.RequirePermission("team.remove")).Delete("/members/{userID}", teamHandler.RemoveMember)
				r.With(middleware.RequirePermission("team.invite")).Post("/invitations", teamHandler.CreateInvitation)
				r.With(middleware.RequirePermission("team.view")).Get("/invitations", teamHandler.ListInvitations)
				r.With(middleware.RequirePermission("team.invite")).Post("/invitations/{id}/resend", teamHandler.ResendInvitation)
				r.With(middleware.RequirePermission("team.view")).Get("/roles", teamHandler.ListCustomRoles)
				r.With(middleware.RequirePermission("team.edit_roles")).Post("/roles", teamHandler.CreateCustomRole)
				r.With(middleware.RequirePermission("team.view")).Get("/permissions", teamHandler.ListPermissions)
			})

			r.With(middleware.RequirePermission("settings.view")).Get("/audit", auditHandler.List)

			r.Route("/inbox", func(r chi.Router) {
				r.With(middleware.RequirePermission("inbox.view")).Get("/conversations", inboxHandler.ListConversations)
				r.With(middleware.RequirePermission("inbox.view")).Get("/conversations/{id}", inboxHandler.GetConversation)
				r.With(middleware.RequirePermission("inbox.reply")).Post("/conversations", inboxHandler.CreateConversation)
				r.With(middleware.RequirePermission("inbox.reply")).Post("/conversations/{id}/messages", inboxHandler.SendMessage)
				r.With(middleware.RequirePermission("inbox.reply")).Post("/conversations/{id}/inbound", inboxHandler.ReceiveInbound)
				r.With(middleware.RequirePermission("inbox.assign")).Post("/conversations/{id}/assign", inboxHandler.Assign)
				r.With(middleware.RequirePermission("inbox.close")).Post("/conversations/{id}/close", inboxHandler.Close)
				r.With(middleware.RequireAny("assistant.use_entry_mode", "assistant.use_query_mode")).
					Post("/conversations/{id}/assistant", inboxHandler.AssistantReply)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Post("/subscribe", notificationHandler.Subscribe)
				r.Post("/unsubscribe", notificationHandler.Unsubscribe)
				r.With(middleware.RequirePermission("settings.view")).Get("/", notificationHandler.History)
			})
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	stopWorkers()

	log.Info().Msg("Server stopped")
}
