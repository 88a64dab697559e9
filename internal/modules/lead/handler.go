package lead

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
	service   *Service
	converter *Converter
}

func NewHandler(service *Service, converter *Converter) *Handler {
	return &Handler{service: service, converter: converter}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	leads := rg.Group("/leads")
	{
		leads.POST("", h.CreateLead)
		leads.GET("", h.ListLeads)
		leads.GET("/:id", h.GetLead)
		leads.PUT("/:id", h.UpdateLead)
		leads.POST("/:id/convert-to-opportunity", h.ConvertLead)
	}
}

// CreateLead handles POST /api/v1/leads
func (h *Handler) CreateLead(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "no principal")
		return
	}

	var req LeadCreate
	if err := bindStrict(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	view, err := h.service.Create(c.Request.Context(), p, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "lead created", view)
}

// GetLead handles GET /api/v1/leads/:id
func (h *Handler) GetLead(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	view, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "ok", view)
}

// ListLeads handles GET /api/v1/leads
func (h *Handler) ListLeads(c *gin.Context) {
	var f repository.LeadFilter
	if s := c.Query("status"); s != "" {
		status := domain.LeadStatus(s)
		f.Status = &status
	}
	if s := c.Query("company_id"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			f.CompanyID = &id
		}
	}
	if s := c.Query("owner_id"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			f.OwnerID = &id
		}
	}
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	views, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "ok", views)
}

// UpdateLead handles PUT /api/v1/leads/:id
func (h *Handler) UpdateLead(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "no principal")
		return
	}

	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var patch LeadPatch
	if err := bindStrict(c, &patch); err != nil {
		response.Fail(c, err)
		return
	}

	view, err := h.service.Update(c.Request.Context(), p, id, &patch)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "lead updated", view)
}

// ConvertLead handles POST /api/v1/leads/:id/convert-to-opportunity
func (h *Handler) ConvertLead(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "no principal")
		return
	}

	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var req ConvertRequest
	if c.Request.ContentLength > 0 {
		if err := bindStrict(c, &req); err != nil {
			response.Fail(c, err)
			return
		}
	}

	opp, err := h.converter.Convert(c.Request.Context(), p, id, req.Name, req.Notes)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "lead converted", opp)
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.New(apperror.KindNotFound, "invalid id")
	}
	return id, nil
}
