package httpserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"valentine-storefront/internal/catalog"
	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/metrics"
	"valentine-storefront/internal/repository/cartstore"
	messagerepo "valentine-storefront/internal/repository/message"
	profilerepo "valentine-storefront/internal/repository/profile"
	"valentine-storefront/internal/service/favorites"
	"valentine-storefront/internal/service/identity"
	"valentine-storefront/internal/service/inbox"
	"valentine-storefront/internal/service/order"
	"valentine-storefront/internal/service/profile"
	"valentine-storefront/internal/service/review"
)

// AuthService is the identity provider as seen by the handlers.
type AuthService interface {
	SignUp(ctx context.Context, email, password string, extras identity.ProfileExtras) (*identity.Result, error)
	SignIn(ctx context.Context, email, password string) (*identity.Result, error)
	SignInFederated(ctx context.Context, idToken string) (*identity.Result, error)
	SignOut(ctx context.Context, token string) error
	CurrentIdentity(ctx context.Context, token string) (*domain.Identity, error)
	SendPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	ListSignInMethods(ctx context.Context, email string) ([]string, error)
}

// Deps groups the services the router depends on.
type Deps struct {
	Auth      AuthService
	Catalog   *catalog.Service
	Carts     cartstore.Repository
	Orders    *order.Service
	Profiles  *profile.Service
	Favorites *favorites.Service
	Reviews   *review.Service
	// ReviewFeed serves summaries from the live review stream; nil disables them.
	ReviewFeed *review.Tracker
	Inbox      *inbox.Service

	// Event streams open their own subscriptions through these.
	ProfileRepo profilerepo.Repository
	MessageRepo messagerepo.Repository

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Ready    func(context.Context) error

	CORSOrigins []string
	AdminKey    string
	// KeepAlive is the comment interval on event streams.
	KeepAlive time.Duration

	// closing ends open event streams once the server starts shutting down.
	closing <-chan struct{}
}

type api struct {
	deps   Deps
	logger zerolog.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, deps Deps) *gin.Engine {
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.KeepAlive <= 0 {
		deps.KeepAlive = 25 * time.Second
	}
	a := &api{deps: deps, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), accessLog(logger), observe(deps.Metrics))
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", adminKeyHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(withSession(deps.Auth, logger))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	auth := router.Group("/auth")
	auth.POST("/signup", a.signUp)
	auth.POST("/signin", a.signIn)
	auth.POST("/signout", a.signOut)
	auth.POST("/federated", a.signInFederated)
	auth.POST("/password-reset", a.sendPasswordReset)
	auth.POST("/password-reset/confirm", a.confirmPasswordReset)
	auth.GET("/methods", a.signInMethods)

	router.GET("/categories", a.categories)
	router.GET("/products", a.products)
	router.GET("/products/:id", a.product)
	router.POST("/products/:id/questions", requireIdentity(), a.askQuestion)

	router.GET("/cart", a.getCart)
	router.POST("/cart/lines", a.addCartLine)
	router.PATCH("/cart/lines", a.updateCartLine)
	router.DELETE("/cart/lines", a.removeCartLine)
	router.DELETE("/cart", a.clearCart)

	router.POST("/checkout", a.checkout)
	router.GET("/orders", requireIdentity(), a.orders)

	router.GET("/reviews/summary", a.reviewSummary)
	router.POST("/reviews", requireIdentity(), a.addReview)

	router.POST("/contact", a.contact)

	me := router.Group("/me", requireIdentity())
	me.GET("", a.me)
	me.PUT("/profile", a.updateProfile)
	me.GET("/favorites", a.listFavorites)
	me.POST("/favorites/:productId/toggle", a.toggleFavorite)
	me.GET("/inbox", a.getInbox)
	me.GET("/live", a.live)

	router.POST("/admin/messages/:id/answer", requireAdminKey(deps.AdminKey), a.answerMessage)

	return router
}
