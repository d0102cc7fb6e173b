package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-access-control/internal/admission"
	"github.com/iliyamo/facility-access-control/internal/middleware"
)

// ScanHandler serves the entrance scan endpoint.  It owns no business
// rules: the token router picks the facility and its admission controller
// produces the decision; the handler only translates the typed result
// into HTTP.
type ScanHandler struct {
	Router *admission.Router
}

// NewScanHandler constructs a ScanHandler over the admission router.
func NewScanHandler(router *admission.Router) *ScanHandler {
	if router == nil {
		panic("nil router passed to NewScanHandler")
	}
	return &ScanHandler{Router: router}
}

// Scan handles POST /v1/scan.  The body carries the raw entrance token;
// the member profile comes from the identity middleware.  A denial is a
// normal response with a machine-readable reason, not an error: the
// entrance device renders the message and moves on to the next member.
func (h *ScanHandler) Scan(c echo.Context) error {
	member, ok := middleware.MemberFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()

	ctl, reason, err := h.Router.Route(ctx, body.Token)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable"})
	}
	if reason != "" {
		return deniedResponse(c, admission.Result{Reason: reason})
	}

	result, err := ctl.Admit(ctx, body.Token, member, now)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable"})
	}
	if !result.Committed {
		return deniedResponse(c, result)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"status": "admitted",
		"record": result.Record,
	})
}

// deniedResponse maps a denial reason to an HTTP status.  Token problems
// read as authentication failures, eligibility and entitlement as
// forbidden, timing/duplicate/capacity as conflicts with current state,
// and a configuration fault as a service-side problem the member cannot
// fix.
func deniedResponse(c echo.Context, result admission.Result) error {
	status := http.StatusConflict
	switch result.Reason {
	case admission.ReasonInvalidToken, admission.ReasonUnknownToken, admission.ReasonAmbiguousToken:
		status = http.StatusUnauthorized
	case admission.ReasonConfigurationFault:
		status = http.StatusServiceUnavailable
	default:
		if strings.HasPrefix(string(result.Reason), "eligibility:") ||
			strings.HasPrefix(string(result.Reason), "entitlement:") {
			status = http.StatusForbidden
		}
	}
	resp := echo.Map{
		"status": "denied",
		"reason": result.Reason,
	}
	if result.OfferWaitlist {
		resp["offer_waitlist"] = true
		resp["slot_id"] = result.SlotID
		resp["date"] = result.Date
	}
	return c.JSON(status, resp)
}
