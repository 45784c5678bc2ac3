package shop

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pos-billing/internal/billing"
	"pos-billing/internal/common/logger"
	"pos-billing/internal/domain"
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(s *Service, log *logger.Logger) *Handler {
	return &Handler{service: s, log: log}
}

func (h *Handler) Menu(c *gin.Context) {
	items, err := h.service.Menu(c.Request.Context())
	if !h.handleErr(c, "menu_failed", err) {
		return
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	c.JSON(http.StatusOK, domain.MenuResponse{Items: items})
}

func (h *Handler) AddItem(c *gin.Context) {
	var req domain.MenuItem
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": domain.StatusError, "message": "invalid request body"})
		return
	}
	it, err := h.service.AddItem(c.Request.Context(), req)
	if !h.handleErr(c, "menu_add_failed", err) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": domain.StatusSuccess, "item": it})
}

func (h *Handler) UpdatePrices(c *gin.Context) {
	var req domain.PriceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": domain.StatusError, "message": "invalid request body"})
		return
	}
	if !h.handleErr(c, "menu_prices_failed", h.service.UpdatePrices(c.Request.Context(), req.Prices)) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": domain.StatusSuccess, "updated": len(req.Prices)})
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": domain.StatusError, "message": "invalid item id"})
		return
	}
	it, err := h.service.DeleteItem(c.Request.Context(), id)
	if !h.handleErr(c, "menu_delete_failed", err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  domain.StatusSuccess,
		"message": fmt.Sprintf("Item %q deleted successfully", it.Name),
	})
}

func (h *Handler) Settings(c *gin.Context) {
	st, err := h.service.Profile(c.Request.Context())
	if !h.handleErr(c, "settings_failed", err) {
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) SaveSettings(c *gin.Context) {
	var req domain.ShopSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": domain.StatusError, "message": "invalid request body"})
		return
	}
	st, err := h.service.SaveSettings(c.Request.Context(), req)
	if !h.handleErr(c, "settings_save_failed", err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": domain.StatusSuccess, "settings": st})
}

// handleErr writes the error response for err and reports whether the
// handler may continue.
func (h *Handler) handleErr(c *gin.Context, action string, err error) bool {
	if err == nil {
		return true
	}
	code := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, ErrValidation):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrNotFound):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, ErrConflict):
		code, msg = http.StatusConflict, err.Error()
	default:
		h.log.WithRequestID(c.GetString(billing.RequestIDKey)).Error(action, err, nil)
	}
	c.JSON(code, gin.H{"status": domain.StatusError, "message": msg})
	return false
}
