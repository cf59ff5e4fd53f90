package handler

import (
	"net/http"

	"terrasite_backend/internal/leads/service"
	"terrasite_backend/internal/leads/transport"
	"terrasite_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "Некорректный формат заявки"

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Submit handles POST /submit-form.
func (h *Handler) Submit(c *gin.Context) {
	var req transport.SubmitLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if _, err := h.svc.ProcessLead(c.Request.Context(), req); httpkit.HandleError(c, err) {
		return
	}

	httpkit.Success(c, service.MsgAccepted)
}

// List handles GET /admin/leads.
func (h *Handler) List(c *gin.Context) {
	leads, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, leads)
}
