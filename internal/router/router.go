// Package router wires handlers onto the Echo instance. Route groups
// mirror the role model: public browse, authenticated user endpoints,
// role-gated auctioneer/bidder operations, and the admin surface.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/openbid/auction-marketplace/internal/config"
	"github.com/openbid/auction-marketplace/internal/handler"
	"github.com/openbid/auction-marketplace/internal/middleware"
	"github.com/openbid/auction-marketplace/internal/role"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Auction      *handler.AuctionHandler
	Bid          *handler.BidHandler
	Commission   *handler.CommissionHandler
	Notification *handler.NotificationHandler
	Admin        *handler.AdminHandler
}

// Register mounts the full REST surface under /api/v1. The response
// cache fronts the public browse endpoints; the rate limiter fronts
// everything.
func Register(e *echo.Echo, db *sql.DB, rdb *redis.Client, cfg config.Config, h Handlers) {
	e.GET("/healthz", handler.Health(db))

	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)
	authn := middleware.JWTAuth(cfg.JWTSecret)

	api := e.Group("/api/v1", limiter)

	// Public.
	user := api.Group("/user")
	user.POST("/register", h.Auth.Register)
	user.POST("/login", h.Auth.Login)
	user.POST("/refresh", h.Auth.Refresh)
	user.GET("/leaderboard", h.Auth.Leaderboard, cache)
	user.GET("/me", h.Auth.Me, authn)
	user.GET("/logout", h.Auth.Logout, authn)

	auction := api.Group("/auction")
	auction.GET("/allitems", h.Auction.AllItems, cache)
	auction.GET("/:id", h.Auction.Details)

	// Auctioneer.
	auctioneer := api.Group("/auction", authn, middleware.RequireRole(role.Auctioneer))
	auctioneer.POST("/create", h.Auction.Create)
	auctioneer.GET("/myitems", h.Auction.MyItems)
	auctioneer.DELETE("/delete/:id", h.Auction.Delete)
	auctioneer.PUT("/item/republish/:id", h.Auction.Republish)

	// Bidder.
	bid := api.Group("/bid", authn, middleware.RequireRole(role.Bidder))
	bid.POST("/place/:id", h.Bid.Place)

	// Commission tracking (auctioneers pay the platform).
	commission := api.Group("/commission", authn, middleware.RequireRole(role.Auctioneer))
	commission.POST("/proof", h.Commission.SubmitProof)
	commission.GET("/history", h.Commission.History)

	// Notifications for any signed-in account.
	notif := api.Group("/notification", authn)
	notif.GET("", h.Notification.List)
	notif.PUT("/:id/read", h.Notification.MarkRead)
	notif.PUT("/read-all", h.Notification.MarkAllRead)
	notif.DELETE("/:id", h.Notification.Delete)

	// Admin surface. Per-target rules (who moderates whom, Super Admin
	// only purges) are enforced in the handlers.
	admin := api.Group("/admin", authn, middleware.RequireAdmin())
	admin.GET("/auctions/pending", h.Admin.PendingAuctions)
	admin.PUT("/auction/approve/:id", h.Admin.ApproveAuction)
	admin.PUT("/auction/reject/:id", h.Admin.RejectAuction)
	admin.DELETE("/auctionitem/delete/:id", h.Admin.DeleteAuction)

	admin.GET("/paymentproofs/getall", h.Admin.AllProofs)
	admin.GET("/paymentproof/:id", h.Admin.ProofDetail)
	admin.PUT("/paymentproof/status/update/:id", h.Admin.UpdateProofStatus)
	admin.DELETE("/paymentproof/delete/:id", h.Admin.DeleteProof)

	admin.GET("/users", h.Admin.Users)
	admin.GET("/users/getall", h.Admin.UserStats)
	admin.GET("/monthlyincome", h.Admin.MonthlyIncome)
	admin.POST("/admin/create", h.Admin.CreateAdmin)
	admin.PUT("/user/ban/:id", h.Admin.BanUser)
	admin.PUT("/user/suspend/:id", h.Admin.SuspendUser)
	admin.DELETE("/user/delete/:id", h.Admin.DeleteUser)
	admin.PUT("/user/restore/:id", h.Admin.RestoreUser)
	admin.DELETE("/admin/remove/:id", h.Admin.RemoveAdmin)
	admin.DELETE("/permanent/user/:id", h.Admin.PurgeUser)
	admin.DELETE("/permanent/auction/:id", h.Admin.PurgeAuction)
	admin.DELETE("/permanent/paymentproof/:id", h.Admin.PurgeProof)
	admin.GET("/soft-deleted", h.Admin.SoftDeleted)
}
