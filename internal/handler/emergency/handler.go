package emergency

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bloodbridge/backend/internal/handler"
	"github.com/bloodbridge/backend/internal/model"
	"github.com/bloodbridge/backend/internal/service/emergency"
	"github.com/bloodbridge/backend/pkg/httputil"
)

// minCaptchaTokenLen rejects obviously bogus tokens before any work is
// done. Full CAPTCHA verification happens at the edge proxy.
const minCaptchaTokenLen = 10

type Handler struct {
	service *emergency.Service
}

func NewHandler(service *emergency.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/emergency", h.SendAlerts)
}

type alertRequest struct {
	BloodGroup    string `json:"blood_group" binding:"required,bloodgroup"`
	City          string `json:"city" binding:"required"`
	HospitalName  string `json:"hospital_name" binding:"required"`
	Address       string `json:"address" binding:"required"`
	State         string `json:"state" binding:"required"`
	RequesterName string `json:"requester_name" binding:"required"`
	Notes         string `json:"notes"`
	CaptchaToken  string `json:"captcha_token"`
}

type alertStats struct {
	TotalDonors     int     `json:"total_donors"`
	Sent            int     `json:"sent"`
	Failed          int     `json:"failed"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type alertResponse struct {
	handler.Response
	Stats *alertStats `json:"stats,omitempty"`
}

func (h *Handler) SendAlerts(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid request: "+err.Error()))
		return
	}

	if len(req.CaptchaToken) < minCaptchaTokenLen {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("CAPTCHA verification required."))
		return
	}

	result, err := h.service.SendAlerts(c.Request.Context(), &model.EmergencyRequest{
		RequesterID:   c.ClientIP(),
		BloodGroup:    req.BloodGroup,
		City:          req.City,
		State:         req.State,
		HospitalName:  req.HospitalName,
		Address:       req.Address,
		RequesterName: req.RequesterName,
		Notes:         req.Notes,
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if !result.Found {
		c.JSON(http.StatusOK, handler.NewErrorResponse(result.Message))
		return
	}

	c.JSON(http.StatusOK, alertResponse{
		Response: handler.Response{Success: true, Message: result.Message},
		Stats: &alertStats{
			TotalDonors:     result.Stats.Total,
			Sent:            result.Stats.Sent,
			Failed:          result.Stats.Failed,
			DurationSeconds: result.Stats.Duration.Seconds(),
		},
	})
}
