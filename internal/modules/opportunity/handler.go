package opportunity

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crmcore/internal/domain"
	"crmcore/internal/middleware"
	"crmcore/internal/pkg/apperror"
	"crmcore/internal/pkg/response"
	"crmcore/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	opps := rg.Group("/opportunities")
	{
		opps.GET("", h.List)
		opps.GET("/:id", h.Get)
		opps.PATCH("/:id/stage", h.AdvanceStage)
	}
}

type stagePatch struct {
	Stage     string         `json:"stage" binding:"required"`
	StageData map[string]any `json:"stage_data"`
	Notes     string         `json:"notes"`
}

// Get handles GET /api/v1/opportunities/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.FailWith(c, apperror.KindNotFound, "invalid opportunity id")
		return
	}

	opp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "ok", opp)
}

// List handles GET /api/v1/opportunities
func (h *Handler) List(c *gin.Context) {
	var f repository.OpportunityFilter
	if s := c.Query("status"); s != "" {
		st := domain.OpportunityStatus(s)
		f.Status = &st
	}
	if s := c.Query("stage"); s != "" {
		st := domain.Stage(s)
		f.Stage = &st
	}
	if s := c.Query("company_id"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			f.CompanyID = &id
		}
	}
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	opps, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "ok", opps)
}

// AdvanceStage handles PATCH /api/v1/opportunities/:id/stage
func (h *Handler) AdvanceStage(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "no principal")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.FailWith(c, apperror.KindNotFound, "invalid opportunity id")
		return
	}

	var req stagePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWith(c, apperror.KindInvariantViolation, "invalid request body")
		return
	}

	opp, err := h.service.AdvanceStage(c.Request.Context(), p, id, domain.Stage(req.Stage), req.StageData, req.Notes)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "stage updated", opp)
}
