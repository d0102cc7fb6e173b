package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-access-control/internal/middleware"
	"github.com/iliyamo/facility-access-control/internal/model"
	"github.com/iliyamo/facility-access-control/internal/waitlist"
)

// WaitlistHandler exposes the member-facing join/leave operations and the
// staff-facing queue inspection and status transitions.
type WaitlistHandler struct {
	Manager *waitlist.Manager
}

// NewWaitlistHandler constructs a WaitlistHandler over the manager.
func NewWaitlistHandler(manager *waitlist.Manager) *WaitlistHandler {
	if manager == nil {
		panic("nil manager passed to NewWaitlistHandler")
	}
	return &WaitlistHandler{Manager: manager}
}

type waitlistRequest struct {
	SlotID uint64 `json:"slot_id"`
	Date   string `json:"date"`
}

func (r waitlistRequest) validate() error {
	if r.SlotID == 0 {
		return errors.New("slot_id is required")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}
	return nil
}

// Join handles POST /v1/waitlist.  The position is assigned by the store;
// joining the same occurrence twice while still pending is a conflict.
func (h *WaitlistHandler) Join(c echo.Context) error {
	member, ok := middleware.MemberFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body waitlistRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := body.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	entry, err := h.Manager.Join(c.Request().Context(), body.SlotID, member.ID, body.Date)
	if err != nil {
		if errors.Is(err, waitlist.ErrAlreadyWaitlisted) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already waitlisted"})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable"})
	}
	return c.JSON(http.StatusCreated, entry)
}

// Leave handles DELETE /v1/waitlist.  The occurrence is identified by
// query parameters so the request carries no body.
func (h *WaitlistHandler) Leave(c echo.Context) error {
	member, ok := middleware.MemberFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	req, err := occurrenceFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if err := h.Manager.Leave(c.Request().Context(), req.SlotID, member.ID, req.Date); err != nil {
		if errors.Is(err, waitlist.ErrNotWaitlisted) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not waitlisted"})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable"})
	}
	return c.NoContent(http.StatusNoContent)
}

// PeekNext handles GET /v1/waitlist/next for staff.  It reveals the head
// of the pending queue without consuming it; 204 means nobody is waiting.
func (h *WaitlistHandler) PeekNext(c echo.Context) error {
	req, err := occurrenceFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	entry, err := h.Manager.PeekNext(c.Request().Context(), req.SlotID, req.Date)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable"})
	}
	if entry == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, entry)
}

// Mark handles POST /v1/waitlist/:id/status for staff, moving an
// entry to notified, confirmed or cancelled.
func (h *WaitlistHandler) Mark(c echo.Context) error {
	entryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || entryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil || body.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}

	entry, err := h.Manager.Mark(c.Request().Context(), entryID, model.WaitlistStatus(body.Status))
	if err != nil {
		if errors.Is(err, waitlist.ErrUnknownEntry) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "waitlist entry not found"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, entry)
}

func occurrenceFromQuery(c echo.Context) (waitlistRequest, error) {
	slotID, err := strconv.ParseUint(c.QueryParam("slot_id"), 10, 64)
	if err != nil || slotID == 0 {
		return waitlistRequest{}, errors.New("slot_id is required")
	}
	req := waitlistRequest{SlotID: slotID, Date: c.QueryParam("date")}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return waitlistRequest{}, errors.New("date must be YYYY-MM-DD")
	}
	return req, nil
}
