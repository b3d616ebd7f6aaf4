package handlers

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"marketplace/internal/config"
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/service"
)

// HealthCheck pings one backing dependency for /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Services struct {
	Auth     *service.AuthService
	Accounts *service.AccountService
	Products *service.ProductService
	Payments *service.PaymentService
}

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	accounts *service.AccountService
	products *service.ProductService
	payments *service.PaymentService
	checks   []HealthCheck
}

var registerFieldNames sync.Once

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, services Services, checks ...HealthCheck) HandlerSet {
	registerFieldNames.Do(useJSONFieldNames)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     services.Auth,
		accounts: services.Accounts,
		products: services.Products,
		payments: services.Payments,
		checks:   checks,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	bearer := middleware.Authenticate(middleware.BearerAuthenticator{Tokens: h.auth})

	for _, role := range []models.Role{models.RoleBuyer, models.RoleSeller} {
		accounts := router.Group("/accounts/" + string(role))
		accounts.GET("", h.ListAccounts(role))
		accounts.POST("/register", h.RegisterAccount(role))
		accounts.POST("/login", h.Login(role))
		accounts.POST("/logout", bearer, h.Logout)

		owner := accounts.Group("",
			h.authenticate(h.cfg.Security.Strategies.Accounts, role),
			middleware.RequireRoles(role),
		)
		owner.GET("/profile", h.Profile)
		owner.POST("/profile", h.Profile)
		owner.PUT("/profile", h.UpdateProfile)
		owner.PUT("/password", h.ChangePassword)
	}

	products := router.Group("/products")
	{
		strategy := h.cfg.Security.Strategies.Products
		asSeller := []gin.HandlerFunc{h.authenticate(strategy, models.RoleSeller), middleware.RequireRoles(models.RoleSeller)}
		asBuyer := []gin.HandlerFunc{h.authenticate(strategy, models.RoleBuyer), middleware.RequireRoles(models.RoleBuyer)}

		products.GET("", h.ListProducts)
		products.GET("/category/:category", h.ListProductsByCategory)
		products.GET("/:id", h.GetProduct)

		products.POST("", append(asSeller, h.CreateProduct)...)
		products.GET("/mine", append(asSeller, h.ListMyProducts)...)
		products.POST("/mine", append(asSeller, h.ListMyProducts)...)
		products.PUT("/:id", append(asSeller, h.UpdateProduct)...)
		products.DELETE("/:id", append(asSeller, h.DeleteProduct)...)
		products.POST("/:id/cart", append(asBuyer, h.AddToCart)...)
	}

	payments := router.Group("/payments")
	{
		var guarded []gin.HandlerFunc
		if h.cfg.Security.PaymentsRequireAuth {
			guarded = append(guarded, h.authenticate(h.cfg.Security.Strategies.Payments, ""))
		}

		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
		payments.POST("", append(guarded, h.CreatePayment)...)
		payments.DELETE("/:id", append(guarded, h.DeletePayment)...)
		payments.PATCH("/:id/status", append(guarded, h.UpdatePaymentStatus)...)
	}
}

// authenticate picks the configured strategy for a route group. role limits
// which account table replayed credentials are checked against; empty means
// any.
func (h HandlerSet) authenticate(strategy string, role models.Role) gin.HandlerFunc {
	if strategy == config.StrategyReplay {
		return middleware.Authenticate(middleware.ReplayAuthenticator{Credentials: h.auth, Role: role})
	}
	return middleware.Authenticate(middleware.BearerAuthenticator{Tokens: h.auth})
}

// identity is only called behind an authentication middleware.
func identity(c *gin.Context) models.Identity {
	id, _ := middleware.CurrentIdentity(c)
	return id
}

// patchIgnoredFields lists the body keys a strategy consumes before the
// handler sees the patch.
func patchIgnoredFields(id models.Identity) []string {
	if id.Strategy == config.StrategyReplay {
		return service.CredentialFields
	}
	return nil
}

func page(c *gin.Context) service.Page {
	return service.ParsePage(c.Query("page"), c.Query("perPage"))
}
