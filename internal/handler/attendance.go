package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-access-control/internal/middleware"
	"github.com/iliyamo/facility-access-control/internal/repository"
)

// AttendanceHandler serves a member's own admission history.
type AttendanceHandler struct {
	Attendance *repository.AttendanceRepo
}

// NewAttendanceHandler constructs an AttendanceHandler.
func NewAttendanceHandler(attendance *repository.AttendanceRepo) *AttendanceHandler {
	if attendance == nil {
		panic("nil repo passed to NewAttendanceHandler")
	}
	return &AttendanceHandler{Attendance: attendance}
}

const defaultHistoryLimit = 50

// History handles GET /v1/me/attendance.  Records come back newest first;
// limit is clamped to a sane page size.
func (h *AttendanceHandler) History(c echo.Context) error {
	member, ok := middleware.MemberFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive integer"})
		}
		if n < limit {
			limit = n
		}
	}

	records, err := h.Attendance.ListByMember(c.Request().Context(), member.ID, limit)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"records": records})
}
