package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"traka/internal/dispatch"
	"traka/internal/ledger"
	"traka/internal/utils"
)

type AdminHandler struct {
	dispatcher *dispatch.Dispatcher
	accountant *ledger.Accountant
}

func NewAdminHandler(dispatcher *dispatch.Dispatcher, accountant *ledger.Accountant) *AdminHandler {
	return &AdminHandler{dispatcher: dispatcher, accountant: accountant}
}

type broadcastRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Broadcast pushes an announcement to the broadcast topic. Admin only.
func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Isi pesan wajib.")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = utils.AppName
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		utils.BadRequestResponse(c, "Isi pesan wajib.")
		return
	}

	if err := h.dispatcher.Broadcast(c.Request.Context(), title, body); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Broadcast terkirim.", nil)
}

// RunContributionExempt triggers the exemption sweep outside its schedule.
// Admin only.
func (h *AdminHandler) RunContributionExempt(c *gin.Context) {
	updated, err := h.accountant.RunExemptionSweep(c.Request.Context())
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Pembebasan kontribusi diperbarui.", gin.H{"updated": updated})
}
