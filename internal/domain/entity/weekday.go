package entity

import (
	"strconv"
	"strings"
	"time"
)

// Weekday is an ISO day of week: Monday=1 .. Sunday=7.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ISOWeekday maps t's weekday onto the template key space. time.Sunday (0) becomes 7.
func ISOWeekday(t time.Time) Weekday {
	wd := t.Weekday()
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd)
}

func (d Weekday) IsValid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.IsValid() {
		return "Weekday(" + strconv.Itoa(int(d)) + ")"
	}
	return weekdayNames[d]
}

// ParseWeekday accepts "1".."7", "0" for Sunday, and English names or their
// three-letter abbreviations in any case.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n == 0 {
			return Sunday, true
		}
		d := Weekday(n)
		return d, d.IsValid()
	}

	s = strings.ToLower(s)
	if len(s) < 3 {
		return 0, false
	}
	for i := Monday; i <= Sunday; i++ {
		name := strings.ToLower(weekdayNames[i])
		if s == name || s == name[:3] {
			return i, true
		}
	}
	return 0, false
}
