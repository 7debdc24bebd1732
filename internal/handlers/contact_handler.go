package handlers

import (
	"github.com/gin-gonic/gin"

	"traka/internal/directory"
	"traka/internal/utils"
)

type ContactHandler struct {
	directory *directory.Service
}

func NewContactHandler(dir *directory.Service) *ContactHandler {
	return &ContactHandler{directory: dir}
}

type phoneLookupRequest struct {
	PhoneNumbers []string `json:"phoneNumbers"`
}

// Registered resolves the caller's phone book against registered accounts.
func (h *ContactHandler) Registered(c *gin.Context) {
	var req phoneLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "phoneNumbers wajib berupa daftar.")
		return
	}

	contacts, err := h.directory.RegisteredContacts(c.Request.Context(), req.PhoneNumbers)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	if contacts == nil {
		contacts = []directory.RegisteredContact{}
	}

	utils.SuccessResponse(c, "", gin.H{"registered": contacts})
}

// RegisteredDrivers resolves phone-book entries to driver accounts for the
// handoff picker.
func (h *ContactHandler) RegisteredDrivers(c *gin.Context) {
	var req phoneLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "phoneNumbers wajib berupa daftar.")
		return
	}

	drivers, err := h.directory.RegisteredDrivers(c.Request.Context(), req.PhoneNumbers)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	if drivers == nil {
		drivers = []directory.RegisteredDriver{}
	}

	utils.SuccessResponse(c, "", gin.H{"registered": drivers})
}
