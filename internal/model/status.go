package model

import (
	"time"
)

// GlobalStatus values for a lesson day. Anything else is tolerated by the
// display layer and rendered with the unknown fallback.
type GlobalStatus string

const (
	LessonScheduled GlobalStatus = "scheduled"
	LessonCancelled GlobalStatus = "cancelled"
	LessonIndoor    GlobalStatus = "indoor"
	LessonPostponed GlobalStatus = "postponed"
)

// Course slots are fixed: every normalized record carries both.
const (
	CourseBasic   = "basic"
	CourseAdvance = "advance"
)

var CourseSlots = []string{CourseBasic, CourseAdvance}

// CourseInfo holds the static display fields of a course slot. They are not
// user-editable and get re-asserted on every normalization.
type CourseInfo struct {
	Name string `json:"name" yaml:"name"`
	Time string `json:"time" yaml:"time"`
}

// CourseTable maps slot → static display fields.
type CourseTable map[string]CourseInfo

// DefaultCourseTable matches the published class schedule.
func DefaultCourseTable() CourseTable {
	return CourseTable{
		CourseBasic:   {Name: "ベーシッククラス", Time: "17:00〜18:00"},
		CourseAdvance: {Name: "アドバンスクラス", Time: "18:10〜19:20"},
	}
}

// CourseStatus is the per-course part of a lesson-status record.
type CourseStatus struct {
	Name    string       `json:"name"`
	Time    string       `json:"time"`
	Status  GlobalStatus `json:"status"`
	Message string       `json:"message"`
}

// LessonStatus is the canonical day record. This courses-keyed shape is
// authoritative; the flat legacy shape is converted at the HTTP boundary
// (see legacy.go).
type LessonStatus struct {
	GlobalStatus  GlobalStatus            `json:"globalStatus"`
	GlobalMessage string                  `json:"globalMessage"`
	Courses       map[string]CourseStatus `json:"courses"`
	LastUpdated   time.Time               `json:"lastUpdated"`
}

// DefaultLessonStatus is the record served when nothing is stored for a date.
func DefaultLessonStatus(table CourseTable) LessonStatus {
	s := LessonStatus{GlobalStatus: LessonScheduled}
	return s.Normalize(table)
}

// Normalize returns a copy with both course slots present. A missing course
// inherits the global status; name and time always come from the table.
func (s LessonStatus) Normalize(table CourseTable) LessonStatus {
	if s.GlobalStatus == "" {
		s.GlobalStatus = LessonScheduled
	}
	out := s
	out.Courses = make(map[string]CourseStatus, len(CourseSlots))
	for _, slot := range CourseSlots {
		cs := s.Courses[slot]
		if cs.Status == "" {
			cs.Status = s.GlobalStatus
		}
		info := table[slot]
		cs.Name = info.Name
		cs.Time = info.Time
		out.Courses[slot] = cs
	}
	return out
}

// IsNormal reports whether the record carries no information worth a banner:
// everything scheduled, no messages anywhere. The presentation layer
// suppresses the banner entirely when this is true, so the rule is exact.
func (s LessonStatus) IsNormal() bool {
	if s.GlobalStatus != LessonScheduled || s.GlobalMessage != "" {
		return false
	}
	for _, slot := range CourseSlots {
		cs, ok := s.Courses[slot]
		if !ok {
			continue
		}
		if cs.Status != LessonScheduled || cs.Message != "" {
			return false
		}
	}
	return true
}

// StatusDisplay is the presentation mapping for one status value.
type StatusDisplay struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var statusDisplays = map[GlobalStatus]StatusDisplay{
	LessonScheduled: {Label: "通常開催", Color: "#4caf50", Icon: "✅"},
	LessonCancelled: {Label: "中止", Color: "#f44336", Icon: "❌"},
	LessonIndoor:    {Label: "室内開催", Color: "#2196f3", Icon: "🏠"},
	LessonPostponed: {Label: "延期", Color: "#ff9800", Icon: "⏳"},
}

var unknownDisplay = StatusDisplay{Label: "不明", Color: "#9e9e9e", Icon: "ℹ️"}

// DisplayFor returns the label/color/icon for a status. Unknown values fall
// back instead of failing: bad data must never take the banner down.
func DisplayFor(status GlobalStatus) StatusDisplay {
	if d, ok := statusDisplays[status]; ok {
		return d
	}
	return unknownDisplay
}
