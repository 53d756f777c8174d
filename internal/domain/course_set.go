package domain

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// CourseSet is the set of course identifiers the transcript parser accepts.
type CourseSet map[string]struct{}

func NewCourseSet(courses ...string) CourseSet {
	set := make(CourseSet, len(courses))
	for _, c := range courses {
		set.Add(c)
	}
	return set
}

// ReadCourseSet reads a newline-delimited course list. Blank lines are skipped
// and surrounding whitespace is trimmed.
func ReadCourseSet(r io.Reader) (CourseSet, error) {
	set := make(CourseSet)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		set.Add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read course list: %w", err)
	}
	return set, nil
}

func (s CourseSet) Add(course string) {
	course = strings.TrimSpace(course)
	if course == "" {
		return
	}
	s[course] = struct{}{}
}

func (s CourseSet) Contains(course string) bool {
	_, ok := s[course]
	return ok
}

// Merge adds every course of other to s.
func (s CourseSet) Merge(other CourseSet) {
	for c := range other {
		s[c] = struct{}{}
	}
}
