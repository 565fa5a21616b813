package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/repository"
)

// respondError translates engine and repository sentinel errors into HTTP
// responses.  Validation problems map to 400, lost races and conflicting
// state to 409, missing resources to 404.  Anything unrecognised is a
// persistence or transport failure and surfaces as 503 so the caller
// knows it may retry the whole operation from scratch.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidDateRange),
		errors.Is(err, repository.ErrInvalidPrice),
		errors.Is(err, repository.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicateRoomNumber),
		errors.Is(err, repository.ErrRoomNotAvailable),
		errors.Is(err, repository.ErrRoomInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage unavailable"})
	}
}
