package handler

import (
	"escrow-settlement/internal/adapter/http/middleware"
	redisStore "escrow-settlement/internal/adapter/storage/redis"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Engine         ports.SettlementEngine
	Wallets        ports.WalletService
	Payouts        ports.PayoutService
	Reconciliation ports.ReconciliationService
	Sweeper        ports.Sweeper
	TokenSvc       ports.TokenService
	InternalToken  string
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(metrics.Middleware())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", metrics.Handler())

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// --- Service-to-service routes (shared token) ---
	internalHandler := NewInternalHandler(deps.Engine, deps.Wallets, deps.Sweeper, deps.Logger)
	internal := r.Group("/internal/v1", middleware.InternalToken(deps.InternalToken), rl("internal"))
	{
		internal.POST("/orders", internalHandler.CreateOrder)
		internal.POST("/payments/confirmed", internalHandler.PaymentConfirmed)
		internal.POST("/scheduler/sweep", internalHandler.Sweep)
		internal.PUT("/wallets/:sellerId/payout-destination", internalHandler.SetPayoutDestination)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	v1 := r.Group("/api/v1", jwtAuth)

	orderHandler := NewOrderHandler(deps.Engine)
	orders := v1.Group("/orders")
	{
		orders.GET("/:id", rl("default"), orderHandler.Get)
		orders.POST("/:id/cancel", rl("default"), orderHandler.Cancel)
		orders.POST("/:id/ship", rl("default"), orderHandler.Ship)
		orders.POST("/:id/deliver", rl("default"), orderHandler.Deliver)
		orders.POST("/:id/confirm", rl("default"), orderHandler.Confirm)
		orders.POST("/:id/issue", rl("disputes"), orderHandler.ReportIssue)
		orders.POST("/:id/disputes", rl("disputes"), orderHandler.OpenDispute)
		orders.POST("/:id/returns", rl("default"), orderHandler.StartReturn)
		orders.POST("/:id/returns/tracking", rl("default"), orderHandler.SubmitReturnTracking)
		orders.POST("/:id/returns/received", rl("default"), orderHandler.ConfirmReturnReceived)
	}

	disputeHandler := NewDisputeHandler(deps.Engine)
	disputes := v1.Group("/disputes")
	{
		disputes.GET("/:id", rl("default"), disputeHandler.Get)
		disputes.POST("/:id/respond", rl("disputes"), disputeHandler.Respond)
		disputes.POST("/:id/evidence", rl("disputes"), disputeHandler.AddEvidence)
	}

	walletHandler := NewWalletHandler(deps.Wallets, deps.Payouts)
	wallet := v1.Group("/wallet")
	{
		wallet.GET("", rl("default"), walletHandler.Summary)
		wallet.GET("/transactions", rl("default"), walletHandler.ListTransactions)
		wallet.POST("/payouts", rl("payouts"), walletHandler.RequestPayout)
	}

	// --- Admin routes ---
	adminHandler := NewAdminHandler(deps.Engine, deps.Wallets, deps.Reconciliation)
	admin := v1.Group("/admin", middleware.RequireAdmin())
	{
		admin.POST("/disputes/:id/review", adminHandler.ReviewDispute)
		admin.POST("/disputes/:id/resolve", adminHandler.ResolveDispute)
		admin.POST("/orders/:id/refund", adminHandler.Refund)
		admin.POST("/orders/:id/release", adminHandler.Release)
		admin.GET("/reconciliation", adminHandler.ListReconciliation)
		admin.POST("/reconciliation/:id/resolve", adminHandler.ResolveReconciliation)
		admin.GET("/wallets/:sellerId/verify", adminHandler.VerifyWallet)
	}

	return r
}
