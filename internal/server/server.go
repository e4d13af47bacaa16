package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"fitbook/internal/analytics"
	"fitbook/internal/auth"
	"fitbook/internal/config"
	"fitbook/internal/email"
	"fitbook/internal/notification"
	"fitbook/internal/pack"
	"fitbook/internal/payment"
	"fitbook/internal/policy"
	"fitbook/internal/reservation"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service,
	bus *reservation.Bus, notifStore notification.Store) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	packRepo := pack.NewRepository(db)
	packHandler := pack.NewHandler(pack.NewService(packRepo))

	policyRepo := policy.NewRepository(db)
	policyHandler := policy.NewHandler(policyRepo)

	resStore := reservation.NewStore(db)
	resService := reservation.NewService(resStore, packRepo, policyRepo,
		payment.LogCharger{}, bus, cfg.AutoConfirm)
	resHandler := reservation.NewHandler(resService)

	analyticsHandler := analytics.NewHandler(analytics.NewService(resStore, cfg.TopHoursLimit))
	notifHandler := notification.NewHandler(notifStore)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware, RateLimitMiddleware(20, 40))
	{
		protected.POST("/reservations", resHandler.Create)
		protected.GET("/reservations", resHandler.List)
		protected.GET("/reservations/upcoming", resHandler.Upcoming)
		protected.GET("/reservations/unpaid", resHandler.Unpaid)
		protected.GET("/reservations/:id", resHandler.Get)
		protected.POST("/reservations/:id/confirm", resHandler.Confirm)
		protected.POST("/reservations/:id/reschedule", resHandler.Reschedule)
		protected.POST("/reservations/:id/cancel", resHandler.Cancel)
		protected.POST("/reservations/:id/complete", resHandler.Complete)
		protected.POST("/reservations/:id/no-show", resHandler.NoShow)
		// Recording cash and transfer payments is a front desk operation.
		protected.POST("/reservations/:id/pay", auth.RequireRole(auth.RoleCenter), resHandler.Pay)

		protected.POST("/packs", packHandler.Create)
		protected.GET("/packs/:id", packHandler.Get)
		protected.GET("/packs/:id/status", packHandler.Status)
		protected.GET("/clients/:clientID/packs", packHandler.ListByClient)

		protected.GET("/policies", policyHandler.Get)
		protected.PUT("/policies", policyHandler.Upsert)

		protected.GET("/analytics/reservations", analyticsHandler.Snapshot)

		protected.GET("/notifications", notifHandler.List)
		protected.GET("/notifications/unread-count", notifHandler.UnreadCount)
		protected.POST("/notifications/:id/read", notifHandler.MarkRead)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics(emailService))
	router.GET("/test-email", TestEmail(emailService))
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
