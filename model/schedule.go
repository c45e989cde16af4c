package model

import (
	"time"
)

// Weekday codes.
var Weekdays = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// WeekdayCode maps a time.Weekday onto its schedule code.
func WeekdayCode(day time.Weekday) string {
	// time.Sunday is 0, the codes start on Monday
	return Weekdays[(int(day)+6)%7]
}

// Schedule is a service's working window for one weekday.
// @Description Working hours of a service for a weekday
type Schedule struct {
	ID             uint   `json:"id" gorm:"primaryKey" example:"1"`
	ServiceID      uint   `json:"service" gorm:"not null;uniqueIndex:idx_schedule_service_weekday"`
	Weekday        string `json:"weekday" gorm:"type:varchar(3);not null;uniqueIndex:idx_schedule_service_weekday" example:"mon"`
	IsWorkingDay   bool   `json:"is_working_day" example:"true"`
	AroundClock    bool   `json:"around_clock"`
	StartWorkTime  string `json:"start_work_time" gorm:"type:varchar(5)" example:"09:00"`
	EndWorkTime    string `json:"end_work_time" gorm:"type:varchar(5)" example:"19:00"`
	BreakStartTime string `json:"break_start_time" gorm:"type:varchar(5)" example:"14:00"`
	BreakEndTime   string `json:"break_end_time" gorm:"type:varchar(5)" example:"15:00"`
	TimePerVisit   int    `json:"time_per_visit" example:"60"`
}

// ApplyDefaults fills empty times and the visit length.
func (s *Schedule) ApplyDefaults() {
	if s.StartWorkTime == "" {
		s.StartWorkTime = DefaultStartWorkTime
	}
	if s.EndWorkTime == "" {
		s.EndWorkTime = DefaultEndWorkTime
	}
	if s.BreakStartTime == "" {
		s.BreakStartTime = DefaultBreakStartTime
	}
	if s.BreakEndTime == "" {
		s.BreakEndTime = DefaultBreakEndTime
	}
	if s.TimePerVisit == 0 {
		s.TimePerVisit = DefaultVisitMinute
	}
}

// window holds a schedule parsed into minutes after midnight.
type window struct {
	start, end           int
	breakStart, breakEnd int
}

func (s *Schedule) parse() (window, error) {
	var w window
	var err error
	if w.start, err = ClockMinutes(s.StartWorkTime); err != nil {
		return w, invalid("start_work_time", "%v", err)
	}
	if w.end, err = ClockMinutes(s.EndWorkTime); err != nil {
		return w, invalid("end_work_time", "%v", err)
	}
	if w.breakStart, err = ClockMinutes(s.BreakStartTime); err != nil {
		return w, invalid("break_start_time", "%v", err)
	}
	if w.breakEnd, err = ClockMinutes(s.BreakEndTime); err != nil {
		return w, invalid("break_end_time", "%v", err)
	}
	return w, nil
}

func (w window) hasBreak() bool { return w.breakEnd > w.breakStart }

// Validate checks the weekday, time order, break placement and visit length.
func (s *Schedule) Validate() error {
	if !contains(Weekdays, s.Weekday) {
		return invalid("weekday", "must be one of %v", Weekdays)
	}
	w, err := s.parse()
	if err != nil {
		return err
	}
	if w.start > w.end {
		return invalid("start_work_time", "must not be later than end_work_time")
	}
	if w.breakStart > w.breakEnd {
		return invalid("break_start_time", "must not be later than break_end_time")
	}
	validVisit := false
	for _, d := range VisitDurations {
		if s.TimePerVisit == d {
			validVisit = true
			break
		}
	}
	if !validVisit {
		return invalid("time_per_visit", "must be one of 0.5, 1, 1.5 or 2 hours")
	}
	if !s.IsWorkingDay || s.AroundClock {
		return nil
	}
	if w.end <= w.start {
		return invalid("end_work_time", "must be later than start_work_time")
	}
	if w.hasBreak() && (w.breakStart < w.start || w.breakEnd > w.end) {
		return invalid("break_start_time", "break must lie within working hours")
	}
	return nil
}

// Accepts reports whether a visit starting at the given wall-clock time fits
// the schedule: a working day, inside working hours, clear of the break and
// aligned to the visit length. Around-the-clock days count steps from midnight.
func (s *Schedule) Accepts(at time.Time) bool {
	w, ok := s.dayWindow()
	if !ok {
		return false
	}
	if at.Second() != 0 || at.Nanosecond() != 0 {
		return false
	}
	return w.fits(at.Hour()*60+at.Minute(), s.TimePerVisit)
}

// dayWindow returns the bookable window of a working day. Around the clock
// it spans the whole day without a break.
func (s *Schedule) dayWindow() (window, bool) {
	if !s.IsWorkingDay || s.TimePerVisit <= 0 {
		return window{}, false
	}
	if s.AroundClock {
		return window{start: 0, end: 24 * 60}, true
	}
	w, err := s.parse()
	if err != nil {
		return window{}, false
	}
	return w, true
}

func (w window) fits(begin, visit int) bool {
	finish := begin + visit
	if begin < w.start || finish > w.end {
		return false
	}
	if (begin-w.start)%visit != 0 {
		return false
	}
	if w.hasBreak() && begin < w.breakEnd && finish > w.breakStart {
		return false
	}
	return true
}

// SlotStarts lists the visit start times of a day in minutes after midnight.
// They are exactly the starts Accepts allows.
func (s *Schedule) SlotStarts() []int {
	w, ok := s.dayWindow()
	if !ok {
		return nil
	}
	var out []int
	for begin := w.start; begin+s.TimePerVisit <= w.end; begin += s.TimePerVisit {
		if w.fits(begin, s.TimePerVisit) {
			out = append(out, begin)
		}
	}
	return out
}

// VisitHoursToMinutes converts 0.5/1/1.5/2 hours into minutes.
func VisitHoursToMinutes(hours float64) int {
	return int(hours * 60)
}
