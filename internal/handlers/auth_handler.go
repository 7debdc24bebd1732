package handlers

import (
	"github.com/gin-gonic/gin"

	"traka/internal/middleware"
	"traka/internal/otp"
	"traka/internal/utils"
)

type AuthHandler struct {
	otpService *otp.Service
}

func NewAuthHandler(otpService *otp.Service) *AuthHandler {
	return &AuthHandler{otpService: otpService}
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type verifyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type verifyEmailCodeRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// RequestSignupCode issues a registration code for a new email. Public.
func (h *AuthHandler) RequestSignupCode(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Email wajib diisi.")
		return
	}

	if err := h.otpService.RequestSignupCode(c.Request.Context(), req.Email); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Kode verifikasi dikirim.", nil)
}

// RequestForgotPasswordCode issues a recovery code for a registered email.
// Public.
func (h *AuthHandler) RequestForgotPasswordCode(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Email wajib diisi.")
		return
	}

	if err := h.otpService.RequestForgotPasswordCode(c.Request.Context(), req.Email); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Kode verifikasi dikirim.", nil)
}

// RequestLoginCode issues a device-verification code for the authenticated
// user.
func (h *AuthHandler) RequestLoginCode(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Email wajib diisi.")
		return
	}

	if err := h.otpService.RequestLoginCode(c.Request.Context(), middleware.CurrentUID(c), req.Email); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Kode verifikasi dikirim.", nil)
}

// VerifyLoginCode consumes the device-verification code.
func (h *AuthHandler) VerifyLoginCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Kode wajib diisi.")
		return
	}

	if err := h.otpService.VerifyLoginCode(c.Request.Context(), middleware.CurrentUID(c), req.Code); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Kode terverifikasi.", nil)
}

// VerifySignupCode consumes a registration code. Public.
func (h *AuthHandler) VerifySignupCode(c *gin.Context) {
	var req verifyEmailCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Email dan kode wajib diisi.")
		return
	}

	if err := h.otpService.VerifySignupCode(c.Request.Context(), req.Email, req.Code); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Kode terverifikasi.", nil)
}

// VerifyForgotPasswordCode consumes a recovery code and hands back a custom
// sign-in token. Public.
func (h *AuthHandler) VerifyForgotPasswordCode(c *gin.Context) {
	var req verifyEmailCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Email dan kode wajib diisi.")
		return
	}

	token, err := h.otpService.VerifyForgotPasswordCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Kode terverifikasi.", gin.H{"customToken": token})
}
