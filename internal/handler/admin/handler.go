package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bloodbridge/backend/internal/handler"
	"github.com/bloodbridge/backend/internal/middleware"
	"github.com/bloodbridge/backend/internal/service/auth"
	"github.com/bloodbridge/backend/internal/service/donor"
	"github.com/bloodbridge/backend/pkg/httputil"
)

type Handler struct {
	authSvc  *auth.Service
	donorSvc *donor.Service
}

func NewHandler(authSvc *auth.Service, donorSvc *donor.Service) *Handler {
	return &Handler{authSvc: authSvc, donorSvc: donorSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	admin.POST("/login", h.Login)

	protected := admin.Group("", middleware.RequireAdmin(h.authSvc))
	{
		protected.GET("/donors", h.ListDonors)
		protected.POST("/donors/:id/verify", h.VerifyDonor)
		protected.DELETE("/donors/:id", h.DeleteDonor)
	}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	handler.Response
	Token string `json:"token,omitempty"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("password is required"))
		return
	}

	token, err := h.authSvc.Login(req.Password)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Response: handler.Response{Success: true, Message: "Login successful"},
		Token:    token,
	})
}

func (h *Handler) ListDonors(c *gin.Context) {
	donors, err := h.donorSvc.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"donors":  donors,
	})
}

func (h *Handler) VerifyDonor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid donor id"))
		return
	}

	if err := h.donorSvc.Verify(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse("Donor verified successfully"))
}

func (h *Handler) DeleteDonor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid donor id"))
		return
	}

	if err := h.donorSvc.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse("Donor deleted successfully"))
}
