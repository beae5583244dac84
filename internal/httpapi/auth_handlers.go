package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/space-booking/internal/apperror"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /login
func (h *Handler) Login(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondErr(c, apperror.BadRequest("invalid JSON body"))
		return
	}
	token, err := h.identity.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// POST /register
func (h *Handler) Register(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondErr(c, apperror.BadRequest("invalid JSON body"))
		return
	}
	if _, err := h.identity.Register(c.Request.Context(), in.Username, in.Password); err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user registered successfully"})
}

// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			h.log.WarnContext(c.Request.Context(), "health check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
