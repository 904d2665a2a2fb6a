package ledger

// Category classifies a person's progress through the newcomer course.
type Category string

const (
	// CategoryTarget marks a person eligible for small-group placement:
	// four or more sessions attended and no placement recorded yet.
	CategoryTarget Category = "target"
	// CategoryPlaced marks a person already assigned to a small group.
	CategoryPlaced Category = "placed"
	// CategoryOngoing marks a person still attending early sessions.
	CategoryOngoing Category = "ongoing"
	// CategoryCompleted exists for extractor-schema compatibility. The
	// aggregator never emits it: the target/placed checks dominate any
	// person with enough attendance to have finished the course, so
	// graduation is tracked by the orthogonal Graduated flag instead.
	CategoryCompleted Category = "completed"
)

// placementThreshold is the attendance count at which a person becomes
// eligible for placement.
const placementThreshold = 4

// Categorize derives the category from attendance count and placement state.
// Pure function of its inputs; first match in priority order wins.
func Categorize(attendanceCount int, placed bool) Category {
	switch {
	case attendanceCount >= placementThreshold && !placed:
		return CategoryTarget
	case attendanceCount >= placementThreshold && placed:
		return CategoryPlaced
	default:
		return CategoryOngoing
	}
}

// ValidCategory reports whether the label is a known category value.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryTarget, CategoryPlaced, CategoryOngoing, CategoryCompleted:
		return true
	}
	return false
}
