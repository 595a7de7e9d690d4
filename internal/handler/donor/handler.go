package donor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bloodbridge/backend/internal/handler"
	"github.com/bloodbridge/backend/internal/model"
	"github.com/bloodbridge/backend/internal/service/donor"
	"github.com/bloodbridge/backend/pkg/httputil"
)

type Handler struct {
	service *donor.Service
}

func NewHandler(service *donor.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	donors := r.Group("/donors")
	{
		donors.POST("", h.Register)
		donors.POST("/search", h.Search)
	}
}

type registerRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	BloodGroup    string `json:"blood_group" binding:"required,bloodgroup"`
	Address       string `json:"address"`
	City          string `json:"city" binding:"required"`
	State         string `json:"state" binding:"required"`
	Phone         string `json:"phone" binding:"omitempty,phone_e164"`
	PhoneVerified bool   `json:"phone_verified"`
}

type searchRequest struct {
	BloodGroup string `json:"blood_group" binding:"required,bloodgroup"`
	City       string `json:"city" binding:"required"`
}

type donorView struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	BloodGroup string    `json:"blood_group"`
	City       string    `json:"city"`
	State      string    `json:"state"`
}

type searchResponse struct {
	handler.Response
	Donors []donorView `json:"donors"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid request: "+err.Error()))
		return
	}

	err := h.service.Register(c.Request.Context(), donor.RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		BloodGroup:    req.BloodGroup,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		Phone:         req.Phone,
		PhoneVerified: req.PhoneVerified,
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse("Registration successful! Await admin verification."))
}

func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid request: "+err.Error()))
		return
	}

	donors, err := h.service.Search(c.Request.Context(), req.BloodGroup, req.City)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	views := make([]donorView, 0, len(donors))
	for _, d := range donors {
		views = append(views, publicView(d))
	}

	c.JSON(http.StatusOK, searchResponse{
		Response: handler.Response{Success: true},
		Donors:   views,
	})
}

// publicView hides contact details; search results are public.
func publicView(d *model.Donor) donorView {
	return donorView{
		ID:         d.ID,
		Name:       d.Name,
		BloodGroup: d.BloodGroup,
		City:       d.City,
		State:      d.State,
	}
}
