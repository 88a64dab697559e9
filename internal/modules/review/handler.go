package review

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"crmcore/internal/domain"
	"crmcore/internal/middleware"
	"crmcore/internal/pkg/apperror"
	"crmcore/internal/pkg/response"
	"crmcore/internal/repository"
)

type Handler struct {
	service *Service
	hub     *Hub
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/leads/:id/request-conversion", h.RequestConversion)
	rg.POST("/leads/:id/review", h.Review)
	rg.DELETE("/leads/:id/conversion-request", h.Withdraw)
	rg.GET("/conversion-requests", h.List)
	rg.GET("/conversion-requests/feed", middleware.RequireCapability(domain.CapLeadReview), h.Feed)
}

type openRequest struct {
	Notes string `json:"notes"`
}

type decideRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comment  string `json:"comment"`
}

// RequestConversion handles POST /api/v1/leads/:id/request-conversion
func (h *Handler) RequestConversion(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "no principal")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.FailWith(c, apperror.KindNotFound, "invalid lead id")
		return
	}

	var req openRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.FailWith(c, apperror.KindInvariantViolation, "invalid request body")
			return
		}
	}

	cr, err := h.service.Open(c.Request.Context(), p, id, req.Notes)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "conversion requested", cr)
}

// Review handles POST /api/v1/leads/:id/review
func (h *Handler) Review(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "no principal")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.FailWith(c, apperror.KindNotFound, "invalid lead id")
		return
	}

	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWith(c, apperror.KindInvariantViolation, "invalid request body")
		return
	}

	cr, err := h.service.Decide(c.Request.Context(), p, id, domain.ConversionDecision(req.Decision), req.Comment)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "request decided", cr)
}

// Withdraw handles DELETE /api/v1/leads/:id/conversion-request
func (h *Handler) Withdraw(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "no principal")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.FailWith(c, apperror.KindNotFound, "invalid lead id")
		return
	}

	cr, err := h.service.Withdraw(c.Request.Context(), p, id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "request withdrawn", cr)
}

// List handles GET /api/v1/conversion-requests
func (h *Handler) List(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "no principal")
		return
	}

	var f repository.RequestFilter
	if s := c.Query("decision"); s != "" {
		d := domain.ConversionDecision(s)
		f.Decision = &d
	}
	if s := c.Query("lead_id"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			f.LeadID = &id
		}
	}
	if s := c.Query("requester_id"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			f.RequesterID = &id
		}
	}
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	reqs, err := h.service.List(c.Request.Context(), p, f)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "ok", reqs)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Feed handles GET /api/v1/conversion-requests/feed (websocket)
func (h *Handler) Feed(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "no principal")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	h.hub.Register(p.UserID, conn)

	// keep reading until the client goes away
	go func() {
		defer h.hub.Unregister(p.UserID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
