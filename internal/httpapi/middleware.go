package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/space-booking/internal/apperror"
	"github.com/Leganyst/space-booking/internal/auth"
)

const identityKey = "identity"

// require проверяет токен и роль для маршрута с capability c.
// Для Public заголовок не читается вовсе.
func (h *Handler) require(c auth.Capability) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c == auth.Public {
			ctx.Next()
			return
		}

		id, err := h.guard.Authorize(ctx.GetHeader("Authorization"))
		if err != nil {
			h.respondErr(ctx, err)
			return
		}
		if err := auth.Permit(id, c); err != nil {
			h.respondErr(ctx, err)
			return
		}

		ctx.Set(identityKey, id)
		ctx.Next()
	}
}

// identity возвращает проверенного пользователя; nil на публичных маршрутах.
func identity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*auth.Identity)
	return id
}

// respondErr пишет в ответ публичное сообщение ошибки. Причина внутренних
// ошибок уходит только в лог.
func (h *Handler) respondErr(c *gin.Context, err error) {
	ae := apperror.From(err)
	status := ae.Kind.HTTPStatus()

	if ae.Kind == apperror.KindInternal {
		h.log.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"err", err,
		)
	} else {
		h.log.DebugContext(c.Request.Context(), "request rejected",
			"path", c.FullPath(),
			"code", ae.Code,
			"err", err,
		)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": ae.Message, "code": ae.Code})
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if id := identity(c); id != nil {
			attrs = append(attrs, slog.String("user_id", id.UserID.String()))
		}
		log.LogAttrs(c.Request.Context(), level, "http request", attrs...)
	}
}

func recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		log.ErrorContext(c.Request.Context(), "panic in handler", "path", c.Request.URL.Path, "panic", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": "internal"})
	})
}
