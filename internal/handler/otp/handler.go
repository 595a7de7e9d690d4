package otp

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bloodbridge/backend/internal/handler"
	"github.com/bloodbridge/backend/internal/notify"
	"github.com/bloodbridge/backend/internal/service/otp"
)

type Handler struct {
	service *otp.Service
	sms     notify.SmsTransport
	logger  zerolog.Logger
}

func NewHandler(service *otp.Service, sms notify.SmsTransport, logger zerolog.Logger) *Handler {
	return &Handler{service: service, sms: sms, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/otp")
	{
		g.POST("/send", h.SendOTP)
		g.POST("/verify", h.VerifyOTP)
	}
}

type sendRequest struct {
	Phone string `json:"phone" binding:"required,phone_e164"`
}

type verifyRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

func (h *Handler) SendOTP(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("a valid phone number is required"))
		return
	}

	code, err := h.service.Issue(req.Phone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to generate verification code"))
		return
	}

	// Issuance stands even if the send fails; the caller just retries
	// the send and gets a fresh code.
	text := fmt.Sprintf("Your BloodBridge verification code is: %s\n\nThis code expires in 5 minutes.", code)
	if err := h.sms.Send(c.Request.Context(), req.Phone, text); err != nil {
		h.logger.Error().Err(err).Str("phone", req.Phone).Msg("otp sms send failed")
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to send OTP"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(fmt.Sprintf("OTP sent successfully to %s", req.Phone)))
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("phone number and OTP code are required"))
		return
	}

	switch h.service.Verify(req.Phone, req.Code) {
	case otp.Verified:
		c.JSON(http.StatusOK, handler.NewSuccessResponse("Phone number verified successfully!"))
	case otp.NotFound:
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("No OTP found for this number."))
	case otp.Expired:
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("OTP expired."))
	default:
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("Invalid OTP."))
	}
}
