package billing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pos-billing/internal/common/logger"
	"pos-billing/internal/domain"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(s *Service, log *logger.Logger) *Handler {
	return &Handler{service: s, log: log}
}

func (h *Handler) logger(c *gin.Context) *logger.Logger {
	return h.log.WithRequestID(c.GetString(RequestIDKey))
}

func (h *Handler) GenerateBill(c *gin.Context) {
	log := h.logger(c)

	var req domain.BillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("generate_bill_bad_json", map[string]any{"error": err.Error()})
		c.JSON(http.StatusBadRequest, domain.BillResponse{Status: domain.StatusError, Message: "invalid request body"})
		return
	}

	bill, err := h.service.Generate(c.Request.Context(), req)
	switch {
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, domain.BillResponse{Status: domain.StatusError, Message: err.Error()})
		return
	case err != nil:
		log.Error("generate_bill_failed", err, nil)
		c.JSON(http.StatusInternalServerError, domain.BillResponse{Status: domain.StatusError, Message: "could not generate bill"})
		return
	}

	c.JSON(http.StatusOK, domain.BillResponse{
		Status:     domain.StatusSuccess,
		BillNumber: bill.Number,
		ViewURL:    "/view_bill/" + bill.Number,
	})
}

func (h *Handler) ViewBill(c *gin.Context) {
	bill, err := h.service.Get(c.Request.Context(), c.Param("bill_number"))
	if !h.handleErr(c, "view_bill_failed", err) {
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, RenderReceipt(bill, h.service.Symbol()))
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (h *Handler) History(c *gin.Context) {
	bills, err := h.service.History(c.Request.Context())
	if !h.handleErr(c, "history_failed", err) {
		return
	}
	if bills == nil {
		bills = []domain.Bill{}
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

func (h *Handler) DeleteBill(c *gin.Context) {
	number := c.Param("bill_number")
	if !h.handleErr(c, "delete_bill_failed", h.service.Delete(c.Request.Context(), number)) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": domain.StatusSuccess, "bill_number": number})
}

func (h *Handler) ClearHistory(c *gin.Context) {
	n, err := h.service.ClearHistory(c.Request.Context())
	if !h.handleErr(c, "clear_history_failed", err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": domain.StatusSuccess, "deleted": n})
}

// handleErr writes the error response for err and reports whether the
// handler may continue.
func (h *Handler) handleErr(c *gin.Context, action string, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": domain.StatusError, "message": "bill not found"})
	default:
		h.logger(c).Error(action, err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"status": domain.StatusError, "message": "internal error"})
	}
	return false
}
