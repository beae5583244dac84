package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Leganyst/space-booking/internal/apperror"
	"github.com/Leganyst/space-booking/internal/model"
	"github.com/Leganyst/space-booking/internal/service"
)

type spaceRequest struct {
	Name       *string `json:"name"`
	Location   *string `json:"location"`
	UsageNotes *string `json:"usage_notes"`
	ImageURL   *string `json:"image_url"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
}

func (r spaceRequest) fields() service.SpaceFields {
	return service.SpaceFields{
		Name:       r.Name,
		Location:   r.Location,
		UsageNotes: r.UsageNotes,
		ImageURL:   r.ImageURL,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
	}
}

type spaceResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Location   string     `json:"location"`
	Status     string     `json:"status"`
	StartTime  *time.Time `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	UsageNotes string     `json:"usage_notes"`
	ImageURL   string     `json:"image_url"`
}

func newSpaceResponse(s model.Space) spaceResponse {
	return spaceResponse{
		ID:         s.ID,
		Name:       s.Name,
		Location:   s.Location,
		Status:     string(s.Status),
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		UsageNotes: s.UsageNotes,
		ImageURL:   s.ImageURL,
	}
}

// GET /allspaces?location=&status=&page=&page_size=
func (h *Handler) ListSpaces(c *gin.Context) {
	q := service.SpaceQuery{
		Location: c.Query("location"),
		Status:   c.Query("status"),
	}
	var err error
	if q.Page, err = intQuery(c, "page"); err != nil {
		h.respondErr(c, err)
		return
	}
	if q.PageSize, err = intQuery(c, "page_size"); err != nil {
		h.respondErr(c, err)
		return
	}

	page, err := h.catalog.List(c.Request.Context(), q)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	out := make([]spaceResponse, 0, len(page.Items))
	for _, s := range page.Items {
		out = append(out, newSpaceResponse(s))
	}
	c.Header("X-Total-Count", strconv.FormatInt(page.Total, 10))
	c.JSON(http.StatusOK, out)
}

// GET /space/:id
func (h *Handler) GetSpace(c *gin.Context) {
	space, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, newSpaceResponse(*space))
}

// POST /addspace
func (h *Handler) AddSpace(c *gin.Context) {
	var in spaceRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondErr(c, apperror.BadRequest("invalid JSON body"))
		return
	}
	space, err := h.catalog.Create(c.Request.Context(), in.fields())
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "space added successfully", "id": space.ID})
}

// PUT /updatespace/:id
func (h *Handler) UpdateSpace(c *gin.Context) {
	var in spaceRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondErr(c, apperror.BadRequest("invalid JSON body"))
		return
	}
	if _, err := h.catalog.Update(c.Request.Context(), c.Param("id"), in.fields()); err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "space updated successfully"})
}

// DELETE /deletespace/:id
func (h *Handler) DeleteSpace(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "space deleted successfully"})
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.BadRequest(key + " must be a non-negative integer")
	}
	return n, nil
}
