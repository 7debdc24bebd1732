package handlers

import (
	"github.com/gin-gonic/gin"

	"traka/internal/ledger"
	"traka/internal/middleware"
	"traka/internal/models"
	"traka/internal/utils"
)

type PaymentHandler struct {
	accountant *ledger.Accountant
}

func NewPaymentHandler(accountant *ledger.Accountant) *PaymentHandler {
	return &PaymentHandler{accountant: accountant}
}

type purchaseRequest struct {
	PurchaseToken string `json:"purchaseToken"`
	OrderID       string `json:"orderId"`
	ProductID     string `json:"productId"`
	PayerType     string `json:"payerType"`
}

// ConfirmContribution settles the driver's contribution up to the served
// count at confirmation time.
func (h *PaymentHandler) ConfirmContribution(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "purchaseToken dan orderId wajib.")
		return
	}

	paidUpTo, err := h.accountant.ConfirmContributionPayment(
		c.Request.Context(), middleware.CurrentUID(c), req.PurchaseToken, req.OrderID, req.ProductID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Kontribusi tercatat.", gin.H{"contributionPaidUpToCount": paidUpTo})
}

// ConfirmTrackDriver unlocks live driver tracking for the paying passenger.
func (h *PaymentHandler) ConfirmTrackDriver(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "purchaseToken dan orderId wajib.")
		return
	}

	err := h.accountant.ConfirmTrackDriverPayment(
		c.Request.Context(), middleware.CurrentUID(c), req.PurchaseToken, req.OrderID, req.ProductID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Pembayaran tercatat.", nil)
}

// ConfirmLacakBarang unlocks package tracking for the paying party of a
// delivery order.
func (h *PaymentHandler) ConfirmLacakBarang(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "purchaseToken dan orderId wajib.")
		return
	}

	err := h.accountant.ConfirmLacakBarangPayment(
		c.Request.Context(), middleware.CurrentUID(c), req.PurchaseToken, req.OrderID,
		models.LacakBarangPayer(req.PayerType), req.ProductID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Pembayaran tercatat.", nil)
}

// SettleViolation pays off the passenger's oldest unpaid violation.
func (h *PaymentHandler) SettleViolation(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "purchaseToken wajib.")
		return
	}

	result, err := h.accountant.SettleViolationPayment(
		c.Request.Context(), middleware.CurrentUID(c), req.PurchaseToken, req.ProductID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Pembayaran pelanggaran tercatat.", result)
}
