package model

// FilterCriteria selects a subset of the catalog. Every field is
// optional: the zero value ("" or 0) matches all quizzes on that axis.
type FilterCriteria struct {
	Course     string
	Program    string
	Year       int
	Section    string
	Category   string
	Difficulty string
}

// Matches reports whether the quiz satisfies every supplied criterion.
// A quiz tagged WildcardAll (or year 0) on an axis matches any filter
// value on that axis. Difficulty is a closed enum and matches exactly.
func (c FilterCriteria) Matches(q Quiz) bool {
	if !matchAxis(c.Course, q.Course) {
		return false
	}
	if !matchAxis(c.Program, q.Program) {
		return false
	}
	if c.Year != 0 && q.Year != 0 && q.Year != c.Year {
		return false
	}
	if !matchAxis(c.Section, q.Section) {
		return false
	}
	if !matchAxis(c.Category, q.Category) {
		return false
	}
	if c.Difficulty != "" && string(q.Difficulty) != c.Difficulty {
		return false
	}
	return true
}

// FilterQuizzes returns the subsequence of quizzes matching the
// criteria, preserving catalog order. Pure: the input slice is never
// modified.
func FilterQuizzes(quizzes []Quiz, c FilterCriteria) []Quiz {
	out := make([]Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if c.Matches(q) {
			out = append(out, q)
		}
	}
	return out
}

func matchAxis(criterion, value string) bool {
	if criterion == "" || criterion == WildcardAll {
		return true
	}
	return value == criterion || value == WildcardAll
}
