package company

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
	companies := rg.Group("/companies")
	{
		companies.POST("", h.Create)
		companies.GET("", h.List)
		companies.GET("/:id", h.Get)
		companies.PUT("/:id", h.Update)
	}
}

func (h *Handler) Create(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "no principal")
		return
	}

	var company domain.Company
	if err := c.ShouldBindJSON(&company); err != nil {
		response.FailWith(c, apperror.KindInvariantViolation, "invalid request body")
		return
	}

	created, err := h.service.Create(c.Request.Context(), p, &company)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "company created", created)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.FailWith(c, apperror.KindNotFound, "invalid company id")
		return
	}

	company, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "ok", company)
}

func (h *Handler) Update(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "no principal")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.FailWith(c, apperror.KindNotFound, "invalid company id")
		return
	}

	var company domain.Company
	if err := c.ShouldBindJSON(&company); err != nil {
		response.FailWith(c, apperror.KindInvariantViolation, "invalid request body")
		return
	}

	updated, err := h.service.Update(c.Request.Context(), p, id, &company)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "company updated", updated)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	companies, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "ok", companies)
}
