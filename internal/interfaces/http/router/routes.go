package router

import (
	"github.com/gin-gonic/gin"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/interfaces/http/handler"
	"github.com/plfog/backoffice/internal/interfaces/http/middleware"
)

// Handlers are the endpoint sets mounted under the API root
type Handlers struct {
	Auth     *handler.AuthHandler
	Push     *handler.PushHandler
	Members  *handler.MemberHandler
	Guilds   *handler.GuildHandler
	Billing  *handler.BillingHandler
	Commerce *handler.CommerceHandler
	Admin    *handler.AdminHandler
}

func can(action, model string) gin.HandlerFunc {
	return middleware.RequirePermission(identity.Codename(action, model))
}

// Groups builds the API route tree. Authentication runs before these
// groups; each route only adds its permission check.
func Groups(h Handlers) []*Group {
	authGroup := NewGroup("/auth").
		POST("/login", h.Auth.Login).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me)

	push := NewGroup("/push").
		GET("/vapid-key", h.Push.VAPIDKey).
		POST("/subscribe", h.Push.Subscribe).
		POST("/unsubscribe", h.Push.Unsubscribe)

	members := NewGroup("/members").
		GET("/:id/summary", can(identity.ActionView, "Member"), h.Members.Summary)

	spaces := NewGroup("/spaces").
		GET("/revenue", can(identity.ActionView, "Space"), h.Members.SpaceRevenue)

	guilds := NewGroup("/guilds").
		GET("/:id/documents", can(identity.ActionView, "GuildDocument"), h.Guilds.ListDocuments).
		POST("/:id/documents", can(identity.ActionAdd, "GuildDocument"), h.Guilds.UploadDocument)

	documents := NewGroup("/guild-documents").
		GET("/:id/download", can(identity.ActionView, "GuildDocument"), h.Guilds.DownloadDocument)

	billing := NewGroup("/billing").
		Use(middleware.RequireStaff()).
		POST("/payout-report", can(identity.ActionAdd, "Payout"), h.Billing.PayoutReport).
		POST("/bill-tabs", can(identity.ActionChange, "Order"), h.Billing.BillTabs).
		POST("/payouts/:id/distribute", can(identity.ActionChange, "Payout"), h.Billing.DistributePayout)

	classes := NewGroup("/classes").
		POST("/:id/enroll", can(identity.ActionAdd, "Student"), h.Commerce.Enroll)

	rentals := NewGroup("/rentals").
		POST("/checkout", can(identity.ActionAdd, "Rental"), h.Commerce.Checkout).
		POST("/:id/return", can(identity.ActionChange, "Rental"), h.Commerce.Return)

	buyables := NewGroup("/buyables").
		POST("/:id/purchase", can(identity.ActionAdd, "BuyablePurchase"), h.Commerce.Purchase)

	admin := NewGroup("/admin").
		GET("", h.Admin.Index)
	model := admin.Sub("/:model").
		Use(middleware.RequireModelPermission("model"))
	model.GET("", h.Admin.List).
		POST("", h.Admin.Create).
		GET("/:id", h.Admin.Get).
		PUT("/:id", h.Admin.Update).
		PATCH("/:id", h.Admin.Update).
		DELETE("/:id", h.Admin.Delete)

	return []*Group{
		authGroup, push, members, spaces, guilds, documents,
		billing, classes, rentals, buyables, admin,
	}
}
