package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/availability"
	"github.com/iliyamo/salon-booking/internal/calendar"
)

// AvailabilityHandler answers slot and date queries outside of a flow, so a
// client can render the picker before starting one.
type AvailabilityHandler struct {
	Now        func() time.Time
	Loc        *time.Location
	WindowDays int
}

func NewAvailabilityHandler(loc *time.Location, windowDays int) *AvailabilityHandler {
	return &AvailabilityHandler{Now: time.Now, Loc: loc, WindowDays: windowDays}
}

func (h *AvailabilityHandler) clock() time.Time { return h.Now().In(h.Loc) }

type dayResp struct {
	Date      calendar.Date           `json:"date"`
	Label     string                  `json:"label"`
	Morning   []availability.TimeSlot `json:"morning"`
	Afternoon []availability.TimeSlot `json:"afternoon"`
}

// Slots handles GET /v1/availability?date=YYYY-MM-DD.  Without a date it
// answers for today.
func (h *AvailabilityHandler) Slots(c echo.Context) error {
	now := h.clock()
	d := calendar.Today(now)
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := calendar.Parse(raw)
		if err != nil {
			return badRequest(c, "date must be YYYY-MM-DD")
		}
		d = parsed
	}
	if h.WindowDays > 0 && d.After(calendar.Today(now).AddDays(h.WindowDays-1)) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "date is outside the booking window"})
	}
	slots, err := availability.GetAvailableSlots(d, now)
	if err != nil {
		return writeError(c, err, nil)
	}
	morning, afternoon := availability.Partition(slots)
	return c.JSON(http.StatusOK, dayResp{
		Date:      d,
		Label:     calendar.FormatChinese(d),
		Morning:   morning,
		Afternoon: afternoon,
	})
}

type dateOption struct {
	Date    calendar.Date `json:"date"`
	Label   string        `json:"label"`
	Weekday string        `json:"weekday"`
	Short   string        `json:"short"`
	Slots   int           `json:"slots"`
}

// Dates handles GET /v1/availability/dates: the booking window with relative
// labels and the number of slots left per day.
func (h *AvailabilityHandler) Dates(c echo.Context) error {
	now := h.clock()
	n := h.WindowDays
	if n <= 0 {
		n = 7
	}
	days := calendar.UpcomingDates(now, n)
	out := make([]dateOption, 0, len(days))
	for _, d := range days {
		slots, _ := availability.GetAvailableSlots(d, now)
		out = append(out, dateOption{
			Date:    d,
			Label:   calendar.RelativeLabel(d, now),
			Weekday: calendar.WeekdayLabel(d),
			Short:   calendar.FormatShort(d),
			Slots:   len(slots),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"dates": out})
}
