package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/localmart/localmart-backend-go/handlers"
	"github.com/localmart/localmart-backend-go/metrics"
	customMiddleware "github.com/localmart/localmart-backend-go/middleware"
)

// SetupRoutes registers the public routes and the /api group behind the JWT middleware.
// contactLimit guards the public contact form.
func SetupRoutes(e *echo.Echo, h *handlers.Handler, contactLimit *customMiddleware.RateLimiter) {
	// Public routes
	e.POST("/register", h.Register)
	e.POST("/login", h.Login)
	e.GET("/health", handlers.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// Help center
	e.GET("/help", h.HelpContent)
	e.GET("/help/articles", h.HelpArticles)
	e.GET("/help/articles/:id", h.HelpArticle)
	e.GET("/help/search", h.HelpSearch)
	e.POST("/help/contact", h.ContactSupport, contactLimit.Middleware())

	// Protected API routes
	api := e.Group("/api")
	api.Use(customMiddleware.Auth(h.JWTSecret))

	// User routes
	api.GET("/users/me", h.GetProfile)
	api.PUT("/users/me/location", h.SetDeliveryLocation)

	// Cart routes
	api.GET("/cart", h.GetCart)
	api.POST("/cart", h.AddToCart)
	api.PUT("/cart", h.ReplaceCart)
	api.PUT("/cart/quantity", h.UpdateCartQuantity)
	api.DELETE("/cart/:storeId/:itemId", h.RemoveFromCart)
	api.DELETE("/cart", h.ClearCart)

	// Checkout routes
	api.GET("/checkout/quote", h.QuoteCheckout)
	api.POST("/checkout", h.SubmitCheckout)

	// Message routes
	api.POST("/messages", h.SendMessage)
	api.GET("/messages", h.Inbox)
	api.GET("/messages/unread", h.UnreadCount)
	api.GET("/messages/unread/ws", h.UnreadFeed)
	api.GET("/messages/:otherId", h.Conversation)
	api.PUT("/messages/:id/read", h.MarkRead)
	api.PUT("/messages/conversation/:otherId/read", h.MarkConversationRead)

	// Payment routes
	api.GET("/payments/provider", h.PaymentProvider)
	api.POST("/payments/intent", h.CreatePaymentIntent)
	api.POST("/payments/intent/:id/receipt", h.SendPaymentReceipt)
	api.POST("/stripe/account", h.CreateStripeAccount)
	api.POST("/stripe/account/link", h.StripeAccountLink)
	api.GET("/stripe/account/status", h.StripeAccountStatus)
	api.GET("/stripe/balance", h.StripeBalance)
	api.POST("/stripe/payout", h.StripePayout)
	api.POST("/paystack/initialize", h.PaystackInitialize)
	api.GET("/paystack/verify/:reference", h.PaystackVerify)

	// Receipt routes
	api.GET("/receipts/recent", h.RecentReceipts)
	api.GET("/receipts/:txnId/preview", h.PreviewReceipt)
	api.POST("/receipts/:txnId/send", h.SendReceipt)

	// Report routes
	api.GET("/reports/transactions", h.ReportTransactions)
	api.GET("/reports/summary", h.ReportSummary)
	api.POST("/reports", h.SaveReport)
}
