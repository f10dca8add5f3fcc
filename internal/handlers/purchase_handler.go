package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

const (
	signatureHeader = "Stripe-Signature"
	maxWebhookBody  = 1 << 20
)

type PurchaseHandler struct {
	BaseHandler
	purchaseService services.PurchaseService
}

func NewPurchaseHandler(purchaseService services.PurchaseService, logger utils.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler:     NewBaseHandler(logger),
		purchaseService: purchaseService,
	}
}

// CreateCheckoutSession starts a hosted checkout for one course
// @Router /purchase/checkout/create-checkout-session [post]
func (h *PurchaseHandler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.Course() == 0 {
		h.RespondWithError(c, http.StatusBadRequest, "courseId is required", nil)
		return
	}

	h.LogRequest(c, "Creating checkout session", "user_id", userID, "course_id", req.Course())

	resp, err := h.purchaseService.InitiateCheckout(c.Request.Context(), userID, req.Course())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"url":      resp.URL,
		"purchase": resp.Purchase,
	})
}

// Webhook receives provider events. The raw body is needed for the signature check.
// @Router /purchase/webhook [post]
func (h *PurchaseHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Unable to read webhook body", err.Error())
		return
	}

	if err := h.purchaseService.HandleWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// GetCourseDetailWithPurchaseStatus
// @Router /purchase/course/{id}/detail-with-status [get]
func (h *PurchaseHandler) GetCourseDetailWithPurchaseStatus(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	resp, err := h.purchaseService.GetCourseDetailWithPurchaseStatus(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListPurchasedCourses
// @Router /purchase [get]
func (h *PurchaseHandler) ListPurchasedCourses(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	courses, err := h.purchaseService.ListPurchasedCourses(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"purchasedCourses": courses,
	})
}
