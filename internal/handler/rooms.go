package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// RoomHandler groups the room catalog operations: public browsing for
// guests and full management for admins.  Admin listings run a sweep
// first so the displayed statuses reflect stays that ended since the
// last timer tick.
type RoomHandler struct {
	Rooms      *repository.RoomRepo
	Reconciler *booking.Reconciler
}

// NewRoomHandler constructs a RoomHandler.  All dependencies must be
// non-nil.
func NewRoomHandler(rooms *repository.RoomRepo, reconciler *booking.Reconciler) *RoomHandler {
	if rooms == nil || reconciler == nil {
		panic("nil dependency passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Reconciler: reconciler}
}

// roomResponse is the JSON shape rooms are rendered as.  Prices are
// reported in minor units, exactly as stored.
type roomResponse struct {
	ID             uint64 `json:"id"`
	Number         string `json:"number"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	PriceCents     uint32 `json:"price_cents"`
	Capacity       uint32 `json:"capacity"`
	Description    string `json:"description,omitempty"`
	Status         string `json:"status"`
	ManualOverride bool   `json:"manual_override"`
}

func toRoomResponse(rm *model.Room) roomResponse {
	return roomResponse{
		ID:             rm.ID,
		Number:         rm.Number,
		Name:           rm.Name,
		Category:       string(rm.Category),
		PriceCents:     rm.PriceCents,
		Capacity:       rm.Capacity,
		Description:    rm.Description,
		Status:         string(rm.Status),
		ManualOverride: rm.ManualOverride,
	}
}

func roomID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id != 0
}

// CreateRoom handles POST /v1/admin/rooms.  The number must be unique and
// the nightly price positive.
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	var body struct {
		Number      string `json:"number"`
		Name        string `json:"name"`
		Category    string `json:"category"`
		PriceCents  uint32 `json:"price_cents"`
		Capacity    uint32 `json:"capacity"`
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Number == "" || body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number and name are required"})
	}
	category := model.RoomCategory(body.Category)
	if !category.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}
	if body.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	rm := &model.Room{
		Number:      body.Number,
		Name:        body.Name,
		Category:    category,
		PriceCents:  body.PriceCents,
		Capacity:    body.Capacity,
		Description: body.Description,
	}
	if err := h.Rooms.Create(c.Request().Context(), rm); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toRoomResponse(rm)})
}

// ListRooms handles GET /v1/admin/rooms.  Supports category, status,
// offset and limit query parameters; rooms come back in creation order.
// A sweep runs first so stale BOOKED statuses from ended stays do not
// leak into the panel.
func (h *RoomHandler) ListRooms(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Reconciler.Sweep(ctx); err != nil {
		// A failed sweep only risks stale statuses; still serve the list.
		log.Printf("sweep: before room list failed: %v", err)
	}
	var f repository.ListFilter
	if v := c.QueryParam("category"); v != "" {
		category := model.RoomCategory(v)
		if !category.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
		}
		f.Category = category
	}
	if v := c.QueryParam("status"); v != "" {
		status := model.RoomStatus(v)
		if !status.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		f.Status = status
	}
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	rooms, err := h.Rooms.List(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]roomResponse, 0, len(rooms))
	for i := range rooms {
		items = append(items, toRoomResponse(&rooms[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetRoom handles GET /v1/rooms/:id, the public room detail view.
func (h *RoomHandler) GetRoom(c echo.Context) error {
	id, ok := roomID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	rm, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toRoomResponse(rm)})
}

// UpdatePrice handles PUT /v1/admin/rooms/:id/price.  Existing bookings
// keep their original total.
func (h *RoomHandler) UpdatePrice(c echo.Context) error {
	id, ok := roomID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var body struct {
		PriceCents uint32 `json:"price_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Rooms.UpdatePrice(c.Request().Context(), id, body.PriceCents); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateDescription handles PUT /v1/admin/rooms/:id/description.
func (h *RoomHandler) UpdateDescription(c echo.Context) error {
	id, ok := roomID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var body struct {
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Rooms.UpdateDescription(c.Request().Context(), id, body.Description); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetStatus handles PUT /v1/admin/rooms/:id/status.  The status becomes
// an admin override (MAINTENANCE, CLOSED or a forced AVAILABLE) that the
// reconciler will not touch until it is cleared again.
func (h *RoomHandler) SetStatus(c echo.Context) error {
	id, ok := roomID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Rooms.SetOverrideStatus(c.Request().Context(), id, model.RoomStatus(body.Status)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearStatus handles DELETE /v1/admin/rooms/:id/status.  It returns the
// room to automatic status management and reconciles it immediately so
// the derived status is fresh.
func (h *RoomHandler) ClearStatus(c echo.Context) error {
	id, ok := roomID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx := c.Request().Context()
	if err := h.Rooms.ClearOverride(ctx, id); err != nil {
		return respondError(c, err)
	}
	if err := h.Reconciler.ReconcileRoom(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteRoom handles DELETE /v1/admin/rooms/:id.  Rooms referenced by any
// booking cannot be deleted.
func (h *RoomHandler) DeleteRoom(c echo.Context) error {
	id, ok := roomID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if err := h.Rooms.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
