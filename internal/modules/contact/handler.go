package contact

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crmcore/internal/domain"
	"crmcore/internal/middleware"
	"crmcore/internal/pkg/apperror"
	"crmcore/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	contacts := rg.Group("/contacts")
	{
		contacts.POST("", h.Create)
		contacts.GET("", h.ListByCompany)
		contacts.GET("/:id", h.Get)
		contacts.PUT("/:id", h.Update)
	}
}

func (h *Handler) Create(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "no principal")
		return
	}

	var contact domain.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		response.FailWith(c, apperror.KindInvariantViolation, "invalid request body")
		return
	}

	created, err := h.service.Create(c.Request.Context(), p, &contact)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "contact created", created)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.FailWith(c, apperror.KindNotFound, "invalid contact id")
		return
	}

	contact, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "ok", contact)
}

func (h *Handler) Update(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "no principal")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.FailWith(c, apperror.KindNotFound, "invalid contact id")
		return
	}

	var contact domain.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		response.FailWith(c, apperror.KindInvariantViolation, "invalid request body")
		return
	}

	updated, err := h.service.Update(c.Request.Context(), p, id, &contact)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "contact updated", updated)
}

func (h *Handler) ListByCompany(c *gin.Context) {
	companyID, err := strconv.ParseInt(c.Query("company_id"), 10, 64)
	if err != nil {
		response.FailWith(c, apperror.KindInvariantViolation, "company_id query parameter required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	contacts, err := h.service.ListByCompany(c.Request.Context(), companyID, limit, offset)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "ok", contacts)
}
