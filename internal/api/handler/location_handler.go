package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/dropoff-location/internal/core/domain"
	"github.com/99minutos/dropoff-location/internal/core/ports"
)

// LocationHandler handles HTTP requests for drop-off locations.
type LocationHandler struct {
	service ports.LocationService
}

func NewLocationHandler(service ports.LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// Create handles POST /api/location.
//
// @Summary      Record a drop-off location
// @Description  Stores one position. An identical position submitted again within an hour is acknowledged without a second write.
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        body  body      recordLocationRequest   true  "Position"
// @Success      201   {object}  recordLocationResponse
// @Success      200   {object}  recordLocationResponse  "duplicate"
// @Failure      400   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /api/location [post]
func (h *LocationHandler) Create(c echo.Context) error {
	var req recordLocationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: msgInvalidPayload})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, messageResponse{Message: err.Error()})
	}

	res, err := h.service.Record(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	if res.Duplicate {
		return c.JSON(http.StatusOK, recordLocationResponse{Message: msgLocationDuplicate})
	}
	return c.JSON(http.StatusCreated, recordLocationResponse{
		ID:         res.ID,
		Message:    msgLocationStored,
		ReceivedAt: &res.ReceivedAt,
	})
}

// Latest handles GET /api/location/latest.
//
// @Summary      Get the most recent drop-off location
// @Tags         locations
// @Produce      json
// @Success      200  {object}  locationResponse
// @Failure      404  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/location/latest [get]
func (h *LocationHandler) Latest(c echo.Context) error {
	view, err := h.service.Latest(c.Request().Context())
	if err != nil {
		if errors.Is(err, domain.ErrLocationNotFound) {
			return c.JSON(http.StatusNotFound, messageResponse{Message: msgLocationNotFound})
		}
		return err
	}
	return c.JSON(http.StatusOK, toLocationResponse(view))
}
