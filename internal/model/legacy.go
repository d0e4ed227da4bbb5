package model

// The admin dashboard historically posted a flat status shape while the
// pages consumed the courses-keyed one. The flat shape survives only at the
// POST boundary; these adapters are the documented mapping between the two.

// LegacyLesson is one entry of the flat shape's lessons array.
type LegacyLesson struct {
	TimeSlot   string `json:"timeSlot"`
	CourseName string `json:"courseName"`
	Status     string `json:"status"`
	Note       string `json:"note"`
}

// LegacyStatus is the flat request/response shape.
type LegacyStatus struct {
	OverallStatus string         `json:"overallStatus"`
	OverallNote   string         `json:"overallNote"`
	Lessons       []LegacyLesson `json:"lessons"`
}

// FromLegacy converts the flat shape into a normalized canonical record.
// Lessons bind to course slots by configured course name first, then by
// position for whatever is left.
func FromLegacy(in LegacyStatus, table CourseTable) LessonStatus {
	out := LessonStatus{
		GlobalStatus:  GlobalStatus(in.OverallStatus),
		GlobalMessage: in.OverallNote,
		Courses:       make(map[string]CourseStatus),
	}

	claimed := make(map[int]bool)
	for _, slot := range CourseSlots {
		for i, l := range in.Lessons {
			if claimed[i] || l.CourseName == "" || l.CourseName != table[slot].Name {
				continue
			}
			out.Courses[slot] = CourseStatus{Status: GlobalStatus(l.Status), Message: l.Note}
			claimed[i] = true
			break
		}
	}
	// Positional fallback for lessons with unrecognized names.
	for _, slot := range CourseSlots {
		if _, ok := out.Courses[slot]; ok {
			continue
		}
		for i, l := range in.Lessons {
			if claimed[i] {
				continue
			}
			out.Courses[slot] = CourseStatus{Status: GlobalStatus(l.Status), Message: l.Note}
			claimed[i] = true
			break
		}
	}

	return out.Normalize(table)
}

// ToLegacy converts a canonical record back to the flat shape for callers
// that still read it.
func ToLegacy(in LessonStatus) LegacyStatus {
	out := LegacyStatus{
		OverallStatus: string(in.GlobalStatus),
		OverallNote:   in.GlobalMessage,
	}
	for _, slot := range CourseSlots {
		cs := in.Courses[slot]
		out.Lessons = append(out.Lessons, LegacyLesson{
			TimeSlot:   cs.Time,
			CourseName: cs.Name,
			Status:     string(cs.Status),
			Note:       cs.Message,
		})
	}
	return out
}
