package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Window is the admission window for monitoring runs: a set of weekdays and
// an hour range, evaluated in a fixed location
type Window struct {
	days      map[time.Weekday]bool // nil means every day
	startHour int
	endHour   int // exclusive
	location  *time.Location
}

// ParseWindow parses days like "mon,tue,wed" or "mon-fri" and hours like
// "8-23" (end exclusive, "22-6" wraps past midnight). Empty values allow
// everything.
func ParseWindow(days, hours string, location *time.Location) (*Window, error) {
	if location == nil {
		location = time.UTC
	}
	w := &Window{startHour: 0, endHour: 24, location: location}

	if strings.TrimSpace(days) != "" {
		w.days = make(map[time.Weekday]bool)
		for _, part := range strings.Split(days, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			from, to, isRange := strings.Cut(part, "-")
			start, ok := weekdays[from]
			if !ok {
				return nil, fmt.Errorf("invalid weekday %q", from)
			}
			if !isRange {
				w.days[start] = true
				continue
			}
			end, ok := weekdays[to]
			if !ok {
				return nil, fmt.Errorf("invalid weekday %q", to)
			}
			for d := start; ; d = (d + 1) % 7 {
				w.days[d] = true
				if d == end {
					break
				}
			}
		}
		if len(w.days) == 0 {
			return nil, fmt.Errorf("no weekday in %q", days)
		}
	}

	if hours = strings.TrimSpace(hours); hours != "" {
		from, to, ok := strings.Cut(hours, "-")
		if !ok {
			return nil, fmt.Errorf("invalid hour range %q, expected start-end", hours)
		}
		start, err := parseHour(from)
		if err != nil {
			return nil, err
		}
		end, err := parseHour(to)
		if err != nil {
			return nil, err
		}
		if start == 24 || start == end {
			return nil, fmt.Errorf("empty hour range %q", hours)
		}
		w.startHour, w.endHour = start, end
	}

	return w, nil
}

func parseHour(s string) (int, error) {
	h, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour %q", s)
	}
	return h, nil
}

// Allows reports whether t falls inside the window
func (w *Window) Allows(t time.Time) bool {
	if w == nil {
		return true
	}
	local := t.In(w.location)
	if w.days != nil && !w.days[local.Weekday()] {
		return false
	}
	hour := local.Hour()
	if w.startHour < w.endHour {
		return hour >= w.startHour && hour < w.endHour
	}
	return hour >= w.startHour || hour < w.endHour
}

func (w *Window) String() string {
	if w == nil {
		return "always"
	}
	days := "every day"
	if w.days != nil {
		names := make([]string, 0, len(w.days))
		for d := time.Sunday; d <= time.Saturday; d++ {
			if w.days[d] {
				names = append(names, strings.ToLower(d.String()[:3]))
			}
		}
		days = strings.Join(names, ",")
	}
	return fmt.Sprintf("%s %02d:00-%02d:00 %s", days, w.startHour, w.endHour, w.location)
}
