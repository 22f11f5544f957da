package scheduling

// LessonStatus is the lifecycle status of an individual lesson.
type LessonStatus string

const (
	LessonScheduled LessonStatus = "SCHEDULED"
	LessonConducted LessonStatus = "CONDUCTED"
	LessonCompleted LessonStatus = "COMPLETED"
	LessonCancelled LessonStatus = "CANCELLED"
	LessonMissed    LessonStatus = "MISSED"
)

// LessonStatuses lists every valid individual-lesson status.
var LessonStatuses = []LessonStatus{
	LessonScheduled,
	LessonConducted,
	LessonCompleted,
	LessonCancelled,
	LessonMissed,
}

// Valid reports whether s is a member of the lesson status enumeration.
func (s LessonStatus) Valid() bool {
	for _, known := range LessonStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// GroupLessonStatus is the lifecycle status of a group lesson.
type GroupLessonStatus string

const (
	GroupScheduled  GroupLessonStatus = "SCHEDULED"
	GroupConfirmed  GroupLessonStatus = "CONFIRMED"
	GroupInProgress GroupLessonStatus = "IN_PROGRESS"
	GroupCompleted  GroupLessonStatus = "COMPLETED"
	GroupCancelled  GroupLessonStatus = "CANCELLED"
	GroupPostponed  GroupLessonStatus = "POSTPONED"
)

// GroupLessonStatuses lists every valid group-lesson status.
var GroupLessonStatuses = []GroupLessonStatus{
	GroupScheduled,
	GroupConfirmed,
	GroupInProgress,
	GroupCompleted,
	GroupCancelled,
	GroupPostponed,
}

// Valid reports whether s is a member of the group-lesson status enumeration.
func (s GroupLessonStatus) Valid() bool {
	for _, known := range GroupLessonStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Role identifies who is requesting a status change. It is a closed
// enumeration; the transition table matches on it exhaustively.
type Role int

const (
	RoleSystem Role = iota
	RoleManager
	RoleTeacher
	RoleStudent
)

func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "SYSTEM"
	case RoleManager:
		return "MANAGER"
	case RoleTeacher:
		return "TEACHER"
	case RoleStudent:
		return "STUDENT"
	default:
		return "UNKNOWN"
	}
}

// ParseRole maps a stored role string to its Role value.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "SYSTEM":
		return RoleSystem, true
	case "MANAGER":
		return RoleManager, true
	case "TEACHER":
		return RoleTeacher, true
	case "STUDENT":
		return RoleStudent, true
	default:
		return RoleSystem, false
	}
}
