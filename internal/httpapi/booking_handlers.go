package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Leganyst/space-booking/internal/apperror"
	"github.com/Leganyst/space-booking/internal/model"
)

type bookRequest struct {
	SpaceID   string `json:"space_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type cancelRequest struct {
	SpaceID string `json:"space_id"`
}

type bookingViewResponse struct {
	BookingID   uuid.UUID  `json:"booking_id"`
	SpaceID     uuid.UUID  `json:"space_id"`
	Name        string     `json:"name"`
	Location    string     `json:"location"`
	ImageURL    string     `json:"image_url"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Status      string     `json:"status"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type eventResponse struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"event_type"`
	CreatedAt time.Time       `json:"created_at"`
	UserID    *uuid.UUID      `json:"user_id,omitempty"`
	BookingID *uuid.UUID      `json:"booking_id,omitempty"`
	SpaceID   *uuid.UUID      `json:"space_id,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
}

// POST /bookspace
func (h *Handler) BookSpace(c *gin.Context) {
	var in bookRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondErr(c, apperror.BadRequest("invalid JSON body"))
		return
	}
	id := identity(c)
	b, err := h.bookings.Book(c.Request.Context(), id.UserID, in.SpaceID, in.StartTime, in.EndTime)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "space booked successfully", "booking_id": b.ID})
}

// POST /cancelbooking
func (h *Handler) CancelBooking(c *gin.Context) {
	var in cancelRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondErr(c, apperror.BadRequest("invalid JSON body"))
		return
	}
	id := identity(c)
	if _, err := h.bookings.Cancel(c.Request.Context(), id.UserID, in.SpaceID); err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled successfully"})
}

// GET /viewbooking
func (h *Handler) ViewBookings(c *gin.Context) {
	id := identity(c)
	views, err := h.bookings.ListForUser(c.Request.Context(), id.UserID)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	out := make([]bookingViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, bookingViewResponse{
			BookingID:   v.BookingID,
			SpaceID:     v.SpaceID,
			Name:        v.SpaceName,
			Location:    v.Location,
			ImageURL:    v.ImageURL,
			StartTime:   v.StartTime,
			EndTime:     v.EndTime,
			Status:      string(v.Status),
			CancelledAt: v.CancelledAt,
			CreatedAt:   v.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GET /auditlog?limit=&space_id=
func (h *Handler) AuditLog(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.respondErr(c, apperror.BadRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}

	var (
		evs []model.Event
		err error
	)
	if spaceID := c.Query("space_id"); spaceID != "" {
		evs, err = h.audit.ForSpace(c.Request.Context(), spaceID)
	} else {
		evs, err = h.audit.Recent(c.Request.Context(), limit)
	}
	if err != nil {
		h.respondErr(c, err)
		return
	}

	out := make([]eventResponse, 0, len(evs))
	for _, e := range evs {
		out = append(out, eventResponse{
			ID:        e.ID,
			Type:      string(e.EventType),
			CreatedAt: e.CreatedAt,
			UserID:    e.UserID,
			BookingID: e.BookingID,
			SpaceID:   e.SpaceID,
			Details:   json.RawMessage(e.Details),
		})
	}
	c.JSON(http.StatusOK, out)
}
