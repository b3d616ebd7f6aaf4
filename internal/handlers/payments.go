package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/internal/models"
	"marketplace/internal/service"
)

type paymentResponse struct {
	ID                  string               `json:"id"`
	Amount              float64              `json:"amount"`
	PaymentMethod       models.PaymentMethod `json:"paymentMethod"`
	PaymentTiming       models.PaymentTiming `json:"paymentTiming"`
	PaymentReferenceURL string               `json:"paymentReferenceUrl"`
	Status              models.PaymentStatus `json:"status"`
	CreatedAt           time.Time            `json:"createdAt"`
}

type updatePaymentStatusRequest struct {
	Status models.PaymentStatus `json:"status" binding:"required"`
}

func toPaymentResponse(p models.Payment) paymentResponse {
	return paymentResponse{
		ID:                  p.ID,
		Amount:              p.Amount,
		PaymentMethod:       p.Method,
		PaymentTiming:       p.Timing,
		PaymentReferenceURL: p.Reference.URL,
		Status:              p.Status,
		CreatedAt:           p.CreatedAt,
	}
}

// CreatePayment takes a multipart form with amount, paymentMethod,
// paymentTiming and the reference image.
func (h HandlerSet) CreatePayment(c *gin.Context) {
	image, closeImage, err := formImage(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeImage()

	payment, err := h.payments.Create(c.Request.Context(), service.CreatePaymentInput{
		Amount: c.PostForm("amount"),
		Method: models.PaymentMethod(c.PostForm("paymentMethod")),
		Timing: models.PaymentTiming(c.PostForm("paymentTiming")),
		Image:  image,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment processed successfully",
		"payment": gin.H{
			"orderId":             payment.ID,
			"amount":              payment.Amount,
			"paymentMethod":       payment.Method,
			"paymentReferenceUrl": payment.Reference.URL,
		},
	})
}

func (h HandlerSet) GetPayment(c *gin.Context) {
	payment, err := h.payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": toPaymentResponse(payment)})
}

func (h HandlerSet) ListPayments(c *gin.Context) {
	payments, total, err := h.payments.List(c.Request.Context(), page(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	items := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, toPaymentResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    total,
		"payments": items,
	})
}

func (h HandlerSet) DeletePayment(c *gin.Context) {
	if err := h.payments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted successfully"})
}

func (h HandlerSet) UpdatePaymentStatus(c *gin.Context) {
	var req updatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	payment, err := h.payments.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": toPaymentResponse(payment)})
}
