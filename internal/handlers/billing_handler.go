package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miniats/miniats/internal/billing"
	"github.com/miniats/miniats/internal/dtos"
	"go.uber.org/zap"
)

type BillingHandler struct {
	Billing *billing.Service
	Log     *zap.Logger
}

func NewBillingHandler(service *billing.Service, log *zap.Logger) *BillingHandler {
	return &BillingHandler{Billing: service, Log: log}
}

// CreateCheckout is POST /api/stripe/checkout.
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	var req dtos.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters: " + err.Error()})
		return
	}

	url, err := h.Billing.CreateCheckout(req.CompanyID, req.PlanID, req.Interval)
	switch {
	case errors.Is(err, billing.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe is not configured"})
	case errors.Is(err, billing.ErrInvalidPlan):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan"})
	case errors.Is(err, billing.ErrCompanyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
	case err != nil:
		h.Log.Error("checkout session failed", zap.String("company_id", req.CompanyID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}

// CreatePortal is POST /api/stripe/portal.
func (h *BillingHandler) CreatePortal(c *gin.Context) {
	var req dtos.PortalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing company ID"})
		return
	}

	url, err := h.Billing.CreatePortal(req.CompanyID)
	switch {
	case errors.Is(err, billing.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe is not configured"})
	case errors.Is(err, billing.ErrCompanyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
	case errors.Is(err, billing.ErrNoCustomer):
		c.JSON(http.StatusNotFound, gin.H{"error": "No Stripe customer found"})
	case err != nil:
		h.Log.Error("portal session failed", zap.String("company_id", req.CompanyID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}

// Plans is GET /api/plans, the static catalog for the pricing page.
func (h *BillingHandler) Plans(c *gin.Context) {
	c.JSON(http.StatusOK, billing.Plans)
}

// Webhook is POST /api/webhooks/stripe. Signature first, then dedup, then
// dispatch.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	event, err := h.Billing.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, billing.ErrNotConfigured) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook secret is not configured"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	if err := h.Billing.ProcessEvent(event); err != nil {
		h.Log.Error("webhook processing failed", zap.String("event_id", event.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
