package weekid

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/javiermolinar/shcadule/internal/ethiopian"
)

// Calendar binds a user's calendar preference to the week and date helpers.
// Ethiopian conversion failures never surface: they are logged and the
// Gregorian equivalent is used instead.
type Calendar struct {
	system System
	logger *zap.Logger
}

// NewCalendar returns a Calendar for system. A nil logger discards logs.
func NewCalendar(system System, logger *zap.Logger) *Calendar {
	if system == "" {
		system = Gregorian
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calendar{system: system, logger: logger}
}

// System returns the calendar system in use.
func (c *Calendar) System() System {
	return c.system
}

// WeekID returns the week containing t.
func (c *Calendar) WeekID(t time.Time) ID {
	id, err := For(t, c.system)
	if err == nil {
		return id
	}

	c.logger.Warn("week id conversion failed, using gregorian",
		zap.String("calendar", string(c.system)),
		zap.Time("date", t),
		zap.Error(err),
	)
	id, _ = For(t, Gregorian)
	return id
}

// Format renders t as "March 5, 2025" or "26 Yekatit 2017 EC".
func (c *Calendar) Format(t time.Time) string {
	if c.system != Ethiopian {
		return t.Format("January 2, 2006")
	}

	eth, err := ethiopian.FromGregorian(t)
	if err != nil {
		c.logger.Warn("ethiopian date conversion failed",
			zap.Time("date", t),
			zap.Error(err),
		)
		return t.Format("January 2, 2006") + " (GC)"
	}
	return eth.String()
}

// FormatShort renders t as a compact day label, "Mar 5" or "26 Yekatit".
func (c *Calendar) FormatShort(t time.Time) string {
	if c.system != Ethiopian {
		return t.Format("Jan 2")
	}

	eth, err := ethiopian.FromGregorian(t)
	if err != nil {
		c.logger.Warn("ethiopian date conversion failed",
			zap.Time("date", t),
			zap.Error(err),
		)
		return t.Format("Jan 2") + " (GC)"
	}
	return fmt.Sprintf("%d %s", eth.Day, eth.MonthName())
}
