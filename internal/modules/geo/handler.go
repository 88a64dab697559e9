package geo

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crmcore/internal/domain"
	"crmcore/internal/pkg/apperror"
	"crmcore/internal/pkg/response"
)

// Repository reads the immutable geographic reference data.
type Repository interface {
	Countries(ctx context.Context) ([]domain.Country, error)
	States(ctx context.Context, countryID int64) ([]domain.State, error)
	Cities(ctx context.Context, stateID int64) ([]domain.City, error)
}

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/geo")
	{
		g.GET("/countries", h.Countries)
		g.GET("/states", h.States)
		g.GET("/cities", h.Cities)
	}
}

func (h *Handler) Countries(c *gin.Context) {
	countries, err := h.repo.Countries(c.Request.Context())
	if err != nil {
		response.FailWith(c, apperror.KindStoreUnavailable, "store error")
		return
	}
	response.Success(c, http.StatusOK, "ok", countries)
}

func (h *Handler) States(c *gin.Context) {
	countryID, err := strconv.ParseInt(c.Query("country_id"), 10, 64)
	if err != nil {
		response.FailWith(c, apperror.KindInvariantViolation, "country_id query parameter required")
		return
	}
	states, err := h.repo.States(c.Request.Context(), countryID)
	if err != nil {
		response.FailWith(c, apperror.KindStoreUnavailable, "store error")
		return
	}
	response.Success(c, http.StatusOK, "ok", states)
}

func (h *Handler) Cities(c *gin.Context) {
	stateID, err := strconv.ParseInt(c.Query("state_id"), 10, 64)
	if err != nil {
		response.FailWith(c, apperror.KindInvariantViolation, "state_id query parameter required")
		return
	}
	cities, err := h.repo.Cities(c.Request.Context(), stateID)
	if err != nil {
		response.FailWith(c, apperror.KindStoreUnavailable, "store error")
		return
	}
	response.Success(c, http.StatusOK, "ok", cities)
}
