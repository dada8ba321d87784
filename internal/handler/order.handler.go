package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"razorpay-checkout/internal/domain"
	"razorpay-checkout/internal/infrastructure/payment"
	"razorpay-checkout/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

type startPaymentRequest struct {
	// number or numeric string
	Amount      json.RawMessage `json:"amount" binding:"required"`
	ProductName string          `json:"product_name"`
}

type startPaymentResponse struct {
	Payment payment.GatewayOrder `json:"payment"`
	Order   domain.OrderView     `json:"order"`
}

type paymentSuccessRequest struct {
	Response json.RawMessage `json:"response" binding:"required"`
}

// POST /razorpay/pay/
func (h *OrderHandler) StartPayment(c *gin.Context) {
	var req startPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid start payment request",
			zap.String("request_id", c.GetString(CtxKeyRequestID)),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidAmount.Error()})
		return
	}

	res, err := h.orderService.StartPayment(c.Request.Context(), amountText(req.Amount), req.ProductName)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, startPaymentResponse{
		Payment: res.Payment,
		Order:   res.Order.View(),
	})
}

// POST /razorpay/payment/success/
func (h *OrderHandler) PaymentSuccess(c *gin.Context) {
	var req paymentSuccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, service.ErrMalformedPayload)
		return
	}

	res, err := h.orderService.ConfirmPayment(c.Request.Context(), req.Response)
	if err != nil {
		h.writeError(c, err)
		return
	}

	msg := "payment successfully received!"
	if res.AlreadyPaid {
		msg = "payment already received"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *OrderHandler) writeError(c *gin.Context, err error) {
	requestID := c.GetString(CtxKeyRequestID)
	_ = c.Error(err)

	switch {
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrMalformedPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSignatureInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment signature"})
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, service.ErrGateway):
		c.JSON(http.StatusFailedDependency, gin.H{"error": "could not create payment order", "request_id": requestID})
	default:
		h.logger.Error("Unhandled payment error",
			zap.String("request_id", requestID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "request_id": requestID})
	}
}

// amountText unwraps a quoted amount; numbers are passed through as written.
func amountText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
