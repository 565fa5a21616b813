package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/service"
	"github.com/iliyamo/hotel-booking/internal/session"
)

const apiDateFormat = "2006-01-02"

// BookingHandler implements the guest-facing booking workflow.  The chat
// gateway in front of this service is trusted to supply the guest's chat
// id; the multi-step flow (dates, room, confirm) stages its partial state
// in the session store, so abandoning the flow leaves nothing behind in
// the ledger.  Final availability is always decided by the ledger's
// atomic re-check, never by what was shown during selection.
type BookingHandler struct {
	Users    *repository.UserRepo
	Rooms    *repository.RoomRepo
	Ledger   *booking.Ledger
	Resolver *booking.Resolver
	Sessions *session.Store // nil when Redis is unavailable; the staged flow is disabled then
}

// NewBookingHandler constructs a BookingHandler.  Sessions may be nil.
func NewBookingHandler(users *repository.UserRepo, rooms *repository.RoomRepo, ledger *booking.Ledger, resolver *booking.Resolver, sessions *session.Store) *BookingHandler {
	if users == nil || rooms == nil || ledger == nil || resolver == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Users: users, Rooms: rooms, Ledger: ledger, Resolver: resolver, Sessions: sessions}
}

// bookingResponse is the JSON shape bookings are rendered as.
type bookingResponse struct {
	ID              uint64 `json:"id"`
	RoomID          uint64 `json:"room_id"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	TotalPriceCents uint64 `json:"total_price_cents"`
	Paid            bool   `json:"paid"`
	Status          string `json:"status"`
}

func toBookingResponse(b *model.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		RoomID:          b.RoomID,
		CheckIn:         b.CheckIn.Format(apiDateFormat),
		CheckOut:        b.CheckOut.Format(apiDateFormat),
		TotalPriceCents: b.TotalPriceCents,
		Paid:            b.Paid,
		Status:          string(b.Status),
	}
}

func chatID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	return id, err == nil && id != 0
}

func parseStay(checkIn, checkOut string) (time.Time, time.Time, bool) {
	in, err1 := time.Parse(apiDateFormat, checkIn)
	out, err2 := time.Parse(apiDateFormat, checkOut)
	return in, out, err1 == nil && err2 == nil
}

// SearchAvailability handles GET /v1/availability.  It is the stateless
// entry point for "what is free between these dates", optionally
// filtered by category.  The result is advisory: a listed room can still
// be lost to a concurrent confirmation.
func (h *BookingHandler) SearchAvailability(c echo.Context) error {
	in, out, ok := parseStay(c.QueryParam("check_in"), c.QueryParam("check_out"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in and check_out must be YYYY-MM-DD"})
	}
	category := model.RoomCategory(c.QueryParam("category"))
	if category != "" && !category.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}
	rooms, err := h.Resolver.FindAvailableRooms(c.Request().Context(), in, out, category)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]roomResponse, 0, len(rooms))
	for i := range rooms {
		items = append(items, toRoomResponse(&rooms[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *BookingHandler) sessionsEnabled(c echo.Context) bool {
	if h.Sessions == nil {
		_ = c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "booking flow unavailable"})
		return false
	}
	return true
}

// ChooseDates handles POST /v1/flow/:chat_id/dates.  It validates the
// requested stay, stages it in the guest's session and returns the rooms
// currently free for those dates.
func (h *BookingHandler) ChooseDates(c echo.Context) error {
	if !h.sessionsEnabled(c) {
		return nil
	}
	id, ok := chatID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chat id"})
	}
	var body struct {
		CheckIn  string `json:"check_in"`
		CheckOut string `json:"check_out"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	in, out, ok := parseStay(body.CheckIn, body.CheckOut)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in and check_out must be YYYY-MM-DD"})
	}
	ctx := c.Request().Context()
	rooms, err := h.Resolver.FindAvailableRooms(ctx, in, out, "")
	if err != nil {
		return respondError(c, err)
	}
	st := &session.State{
		Step:     session.StepSelectingRoom,
		CheckIn:  in.Format(apiDateFormat),
		CheckOut: out.Format(apiDateFormat),
	}
	if err := h.Sessions.Set(ctx, id, st); err != nil {
		return respondError(c, err)
	}
	items := make([]roomResponse, 0, len(rooms))
	for i := range rooms {
		items = append(items, toRoomResponse(&rooms[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "step": st.Step})
}

// SelectRoom handles POST /v1/flow/:chat_id/select.  The room choice is
// staged only; nothing is reserved until confirmation.
func (h *BookingHandler) SelectRoom(c echo.Context) error {
	if !h.sessionsEnabled(c) {
		return nil
	}
	id, ok := chatID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chat id"})
	}
	var body struct {
		RoomID uint64 `json:"room_id"`
	}
	if err := c.Bind(&body); err != nil || body.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id is required"})
	}
	ctx := c.Request().Context()
	st, err := h.Sessions.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if st == nil || st.Step != session.StepSelectingRoom {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no dates chosen"})
	}
	if _, err := h.Rooms.GetByID(ctx, body.RoomID); err != nil {
		return respondError(c, err)
	}
	st.RoomID = body.RoomID
	st.Step = session.StepConfirming
	if err := h.Sessions.Set(ctx, id, st); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"step": st.Step})
}

// ConfirmBooking handles POST /v1/flow/:chat_id/confirm.  It creates the
// guest on first contact, asks the ledger to book the staged room for the
// staged dates, clears the session and publishes a confirmation event.
// When the room was lost to a concurrent confirmation, the ledger's
// re-check reports 409 and the session is rewound to room selection so
// the guest can pick again.
func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
	if !h.sessionsEnabled(c) {
		return nil
	}
	id, ok := chatID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chat id"})
	}
	var body struct {
		Name    string `json:"name"`
		Surname string `json:"surname"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	st, err := h.Sessions.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if st == nil || st.Step != session.StepConfirming || st.RoomID == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no room selected"})
	}
	in, out, err := st.Dates()
	if err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "staged dates are invalid"})
	}
	user, err := h.Users.GetOrCreate(ctx, id, body.Name, body.Surname)
	if err != nil {
		return respondError(c, err)
	}
	b, err := h.Ledger.CreateBooking(ctx, user.ID, st.RoomID, in, out)
	if err != nil {
		if err == repository.ErrRoomNotAvailable {
			// Lost the race: rewind to room selection for these dates.
			st.Step = session.StepSelectingRoom
			st.RoomID = 0
			_ = h.Sessions.Set(ctx, id, st)
		}
		return respondError(c, err)
	}
	_ = h.Sessions.Clear(ctx, id)
	h.publishConfirmed(ctx, b)
	return c.JSON(http.StatusCreated, echo.Map{"item": toBookingResponse(b)})
}

// AbandonFlow handles DELETE /v1/flow/:chat_id.  It drops any staged
// state; the ledger is untouched because nothing was written yet.
func (h *BookingHandler) AbandonFlow(c echo.Context) error {
	if !h.sessionsEnabled(c) {
		return nil
	}
	id, ok := chatID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chat id"})
	}
	if err := h.Sessions.Clear(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBookings handles GET /v1/users/:chat_id/bookings.  Pass
// ?active=true to restrict the list to ACTIVE bookings.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	id, ok := chatID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chat id"})
	}
	ctx := c.Request().Context()
	user, err := h.Users.GetOrCreate(ctx, id, "", "")
	if err != nil {
		return respondError(c, err)
	}
	activeOnly := c.QueryParam("active") == "true"
	items, err := h.Ledger.GetUserBookings(ctx, user.ID, activeOnly)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]bookingResponse, 0, len(items))
	for i := range items {
		out = append(out, toBookingResponse(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListUnpaidBookings handles GET /v1/users/:chat_id/bookings/unpaid.
func (h *BookingHandler) ListUnpaidBookings(c echo.Context) error {
	id, ok := chatID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chat id"})
	}
	ctx := c.Request().Context()
	user, err := h.Users.GetOrCreate(ctx, id, "", "")
	if err != nil {
		return respondError(c, err)
	}
	items, err := h.Ledger.GetUnpaidBookings(ctx, user.ID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]bookingResponse, 0, len(items))
	for i := range items {
		out = append(out, toBookingResponse(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// CancelBooking handles DELETE /v1/users/:chat_id/bookings/:id.  The
// booking must belong to the calling guest.  Cancelling a booking that is
// already CANCELLED or COMPLETED succeeds without effect.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, ok := chatID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chat id"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	user, err := h.Users.GetOrCreate(ctx, id, "", "")
	if err != nil {
		return respondError(c, err)
	}
	b, err := h.Ledger.GetBooking(ctx, bookingID)
	if err != nil {
		return respondError(c, err)
	}
	if b.UserID != user.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	wasActive := !b.Status.Terminal()
	if err := h.Ledger.CancelBooking(ctx, bookingID); err != nil {
		return respondError(c, err)
	}
	if wasActive {
		h.publishCancelled(ctx, b)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkPaid handles POST /v1/admin/bookings/:id/paid.  Payment collection
// happens outside this service; a trusted caller confirms it here.
func (h *BookingHandler) MarkPaid(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Ledger.MarkPaid(c.Request().Context(), bookingID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// publishConfirmed sends the confirmation event.  Publishing is best
// effort: the booking already committed, so a broker outage only costs
// the audit line.
func (h *BookingHandler) publishConfirmed(ctx context.Context, b *model.Booking) {
	rm, err := h.Rooms.GetByID(ctx, b.RoomID)
	if err != nil {
		return
	}
	_ = queue_publisher.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
		EventID:         uuid.NewString(),
		BookingID:       b.ID,
		UserID:          b.UserID,
		RoomID:          b.RoomID,
		RoomNumber:      rm.Number,
		RoomName:        rm.Name,
		CheckIn:         b.CheckIn.Format(apiDateFormat),
		CheckOut:        b.CheckOut.Format(apiDateFormat),
		Nights:          booking.Nights(b.CheckIn, b.CheckOut),
		TotalPriceCents: b.TotalPriceCents,
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *BookingHandler) publishCancelled(ctx context.Context, b *model.Booking) {
	rm, err := h.Rooms.GetByID(ctx, b.RoomID)
	if err != nil {
		return
	}
	_ = queue_publisher.PublishBookingCancelled(ctx, queue.BookingCancelledEvent{
		EventID:     uuid.NewString(),
		BookingID:   b.ID,
		UserID:      b.UserID,
		RoomID:      b.RoomID,
		RoomNumber:  rm.Number,
		CheckIn:     b.CheckIn.Format(apiDateFormat),
		CheckOut:    b.CheckOut.Format(apiDateFormat),
		CancelledAt: time.Now().UTC().Format(time.RFC3339),
	})
}
