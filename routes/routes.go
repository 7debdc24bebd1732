package routes

import (
	"github.com/gin-gonic/gin"

	"traka/internal/config"
	"traka/internal/handlers"
	"traka/internal/middleware"
	"traka/internal/repositories/interfaces"
	"traka/pkg/cache"
	"traka/pkg/logger"
)

// Dependencies carries everything route setup needs.
type Dependencies struct {
	Auth     *handlers.AuthHandler
	Payments *handlers.PaymentHandler
	Contacts *handlers.ContactHandler
	Admin    *handlers.AdminHandler

	Verifier middleware.TokenVerifier
	Users    interfaces.UserRepository
	Cache    *cache.RedisCache
	Security *config.SecurityConfig
	Logger   *logger.Logger
}

// Setup wires every API route under /api/v1.
func Setup(r *gin.RouterGroup, deps *Dependencies) {
	authRequired := middleware.AuthRequired(deps.Verifier)
	adminRequired := middleware.AdminRequired(deps.Users)

	limit := int64(deps.Security.OTPRequestLimit)
	window := deps.Security.OTPRequestWindow
	otpIPLimit := middleware.RateLimitMiddleware(
		deps.Cache, deps.Logger, limit, window, middleware.ClientIPKey("otp:ip"))
	otpEmailLimit := middleware.RateLimitMiddleware(
		deps.Cache, deps.Logger, limit, window, middleware.EmailBodyKey("otp:email"))

	auth := r.Group("/auth")
	{
		// Public code flows, rate limited per caller address and per target
		// address.
		auth.POST("/request-signup-code", otpIPLimit, otpEmailLimit, deps.Auth.RequestSignupCode)
		auth.POST("/request-forgot-password-code", otpIPLimit, otpEmailLimit, deps.Auth.RequestForgotPasswordCode)
		auth.POST("/verify-signup-code", deps.Auth.VerifySignupCode)
		auth.POST("/verify-forgot-password-code", deps.Auth.VerifyForgotPasswordCode)

		// Device verification for signed-in users.
		auth.POST("/request-login-code", authRequired, deps.Auth.RequestLoginCode)
		auth.POST("/verify-login-code", authRequired, deps.Auth.VerifyLoginCode)
	}

	payments := r.Group("/payments")
	payments.Use(authRequired)
	{
		payments.POST("/contribution", deps.Payments.ConfirmContribution)
		payments.POST("/track-driver", deps.Payments.ConfirmTrackDriver)
		payments.POST("/lacak-barang", deps.Payments.ConfirmLacakBarang)
		payments.POST("/violation", deps.Payments.SettleViolation)
	}

	contacts := r.Group("/contacts")
	contacts.Use(authRequired)
	{
		contacts.POST("/registered", deps.Contacts.Registered)
		contacts.POST("/registered-drivers", deps.Contacts.RegisteredDrivers)
	}

	admin := r.Group("/admin")
	admin.Use(authRequired, adminRequired)
	{
		admin.POST("/broadcast", deps.Admin.Broadcast)
		admin.POST("/run-contribution-exempt", deps.Admin.RunContributionExempt)
	}
}
