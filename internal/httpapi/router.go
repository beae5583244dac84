// Package httpapi: JSON HTTP API сервиса бронирования.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/space-booking/internal/auth"
	"github.com/Leganyst/space-booking/internal/service"
)

// Deps: всё, что нужно обработчикам.
type Deps struct {
	Identity *service.IdentityService
	Catalog  *service.CatalogService
	Bookings *service.BookingService
	Audit    *service.AuditService
	Guard    *auth.Guard

	// Ping проверяет хранилище для /healthz; nil: проверки нет.
	Ping func(ctx context.Context) error

	// PublicCatalog: список пространств доступен без токена.
	PublicCatalog bool

	Log *slog.Logger
}

type Handler struct {
	identity *service.IdentityService
	catalog  *service.CatalogService
	bookings *service.BookingService
	audit    *service.AuditService
	guard    *auth.Guard
	ping     func(ctx context.Context) error
	log      *slog.Logger
}

// route: маршрут и то, что требуется от вызывающего.
type route struct {
	method  string
	path    string
	cap     auth.Capability
	handler gin.HandlerFunc
}

func (h *Handler) routes(publicCatalog bool) []route {
	catalogCap := auth.AnyAuthenticated
	if publicCatalog {
		catalogCap = auth.Public
	}

	return []route{
		{http.MethodPost, "/login", auth.Public, h.Login},
		{http.MethodPost, "/register", auth.Public, h.Register},
		{http.MethodGet, "/healthz", auth.Public, h.Health},

		{http.MethodGet, "/allspaces", catalogCap, h.ListSpaces},
		{http.MethodGet, "/allcards", catalogCap, h.ListSpaces},
		{http.MethodGet, "/space/:id", catalogCap, h.GetSpace},
		{http.MethodPost, "/addspace", auth.AdminOnly, h.AddSpace},
		{http.MethodPut, "/updatespace/:id", auth.AdminOnly, h.UpdateSpace},
		{http.MethodDelete, "/deletespace/:id", auth.AdminOnly, h.DeleteSpace},

		{http.MethodPost, "/bookspace", auth.AnyAuthenticated, h.BookSpace},
		{http.MethodPost, "/cancelbooking", auth.AnyAuthenticated, h.CancelBooking},
		{http.MethodGet, "/viewbooking", auth.AnyAuthenticated, h.ViewBookings},

		{http.MethodGet, "/auditlog", auth.AdminOnly, h.AuditLog},
	}
}

func NewRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		identity: d.Identity,
		catalog:  d.Catalog,
		bookings: d.Bookings,
		audit:    d.Audit,
		guard:    d.Guard,
		ping:     d.Ping,
		log:      log,
	}

	r := gin.New()
	r.Use(requestLogger(log), recovery(log))
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	for _, rt := range h.routes(d.PublicCatalog) {
		r.Handle(rt.method, rt.path, h.require(rt.cap), rt.handler)
	}
	return r
}
