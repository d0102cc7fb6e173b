package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-access-control/internal/model"
	"github.com/iliyamo/facility-access-control/internal/repository"
)

// CatalogHandler serves the public schedule views.  Responses are
// read-only snapshots and sit behind the response cache middleware.
type CatalogHandler struct {
	Facilities *repository.FacilityRepo
	Slots      *repository.SlotRepo
}

// NewCatalogHandler constructs a CatalogHandler over the catalog repos.
func NewCatalogHandler(facilities *repository.FacilityRepo, slots *repository.SlotRepo) *CatalogHandler {
	if facilities == nil || slots == nil {
		panic("nil repo passed to NewCatalogHandler")
	}
	return &CatalogHandler{Facilities: facilities, Slots: slots}
}

// slotView is the wire shape of a schedule entry.  Minute-of-day bounds
// are rendered as HH:MM so devices need no client-side conversion.
type slotView struct {
	ID          uint64   `json:"id"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Weekdays    []string `json:"weekdays,omitempty"`
	Capacity    int      `json:"capacity"`
	Restriction string   `json:"restriction"`
}

// ListSlots handles GET /v1/facilities/:id/slots, returning the active
// schedule for one facility.
func (h *CatalogHandler) ListSlots(c echo.Context) error {
	facilityID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || facilityID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	ctx := c.Request().Context()

	facility, err := h.Facilities.GetByID(ctx, facilityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable"})
	}
	if !facility.Active {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
	}

	slots, err := h.Slots.ActiveSlots(ctx, facilityID)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable"})
	}
	views := make([]slotView, 0, len(slots))
	for _, s := range slots {
		views = append(views, newSlotView(s))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"facility": echo.Map{"id": facility.ID, "name": facility.Name},
		"slots":    views,
	})
}

func newSlotView(s model.TimeSlot) slotView {
	v := slotView{
		ID:          s.ID,
		Start:       minuteClock(s.Start),
		End:         minuteClock(s.End),
		Capacity:    s.Capacity,
		Restriction: string(s.Restriction),
	}
	for _, d := range s.Weekdays {
		v.Weekdays = append(v.Weekdays, d.String())
	}
	return v
}

func minuteClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}
