package resolver

import (
	"degreeplan/advisor/internal/domain"

	"github.com/samber/lo"
)

// matchPool credits every pool course found in working, removing it from
// working so no later section can count it again. The returned slice is a new
// list of the pool courses that were not matched, in pool order; pool itself
// is never modified.
func matchPool(pool []domain.CourseOption, working domain.Transcript) (int, []domain.CourseOption) {
	matched := 0
	remaining := make([]domain.CourseOption, 0, len(pool))
	for _, opt := range pool {
		if _, taken := working[opt.Course]; taken {
			matched += opt.Units
			delete(working, opt.Course)
			continue
		}
		remaining = append(remaining, opt)
	}
	return matched, remaining
}

func courseIDs(opts []domain.CourseOption) []string {
	return lo.Map(opts, func(o domain.CourseOption, _ int) string { return o.Course })
}

// sectionResult compares matched credit against required.
func sectionResult(name string, required, matched int, remaining []domain.CourseOption) domain.SectionResult {
	if matched >= required {
		return domain.SectionResult{Name: name, Met: true, Matched: matched}
	}
	return domain.SectionResult{
		Name:      name,
		Options:   courseIDs(remaining),
		Remaining: required - matched,
		Matched:   matched,
	}
}
