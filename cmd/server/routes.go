package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leadrouter.backend/internal/app"
	"leadrouter.backend/internal/interfaces/http/handlers"
	"leadrouter.backend/internal/interfaces/http/middleware"
	"leadrouter.backend/pkg/jwt"
)

type routeDeps struct {
	leadHandler    *handlers.LeadHandler
	payoutHandler  *handlers.PayoutHandler
	adminHandler   *handlers.AdminHandler
	healthHandler  *handlers.HealthHandler
	authMiddleware gin.HandlerFunc
}

func newRouteDeps(a *app.Application, jwtService *jwt.JWTService, db handlers.Pinger) routeDeps {
	return routeDeps{
		leadHandler:    handlers.NewLeadHandler(a.Leads),
		payoutHandler:  handlers.NewPayoutHandler(a.Payouts),
		adminHandler:   handlers.NewAdminHandler(a.Routing, a.Payouts),
		healthHandler:  handlers.NewHealthHandler(db),
		authMiddleware: middleware.AuthMiddleware(jwtService),
	}
}

func newRouter(allowedOrigins []string, d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r, allowedOrigins)
	registerHealthRoute(r, d.healthHandler)
	registerAPIV1Routes(r, d)
	return r
}

func applyCORSMiddleware(r *gin.Engine, allowedOrigins []string) {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.IdempotencyHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowCredentials = true
	}
	r.Use(cors.New(cfg))
}

func registerHealthRoute(r *gin.Engine, h *handlers.HealthHandler) {
	if h == nil {
		h = handlers.NewHealthHandler(nil)
	}
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	v1.Use(d.authMiddleware)
	{
		// Provider inbox
		leads := v1.Group("/leads")
		leads.Use(middleware.RequireProvider())
		{
			leads.GET("", d.leadHandler.ListLeads)
			leads.GET("/:id", d.leadHandler.GetLead)
			leads.POST("/:id/accept", middleware.IdempotencyMiddleware(), d.leadHandler.AcceptLead)
			leads.POST("/:id/reject", d.leadHandler.RejectLead)
		}

		v1.GET("/payouts", middleware.RequireProvider(), d.payoutHandler.GetPayouts)

		v1.POST("/service-requests/:id/route", middleware.RequireAdmin(), d.adminHandler.RouteServiceRequest)

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/fallback-sweep", d.adminHandler.RunFallbackSweep)
			admin.POST("/proposals/:id/payment", middleware.IdempotencyMiddleware(), d.adminHandler.RecordProposalPayment)
			admin.PUT("/proposals/:id/payout", d.adminHandler.UpdatePayoutStatus)
		}
	}
}
