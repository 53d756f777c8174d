package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPassingGrade(t *testing.T) {
	for _, g := range []string{"CR", "C-", "B+", "A", "A+"} {
		assert.True(t, IsPassingGrade(g), g)
	}
	for _, g := range []string{"D+", "D", "F", "NC", "I", "W", "WU", "a", ""} {
		assert.False(t, IsPassingGrade(g), g)
	}
}

func TestTranscriptCloneIsIndependent(t *testing.T) {
	orig := Transcript{"CS 146": {Course: "CS 146", Grade: "A", Semester: "Fall 2023"}}
	cp := orig.Clone()
	delete(cp, "CS 146")
	cp["CS 151"] = CourseRecord{Course: "CS 151", Grade: "B"}

	assert.Len(t, orig, 1)
	assert.Contains(t, orig, "CS 146")
	assert.NotContains(t, orig, "CS 151")
}

func TestTranscriptAssignUnits(t *testing.T) {
	tr := Transcript{
		"CS 146": {Course: "CS 146", Grade: "A"},
		"PE 10":  {Course: "PE 10", Grade: "CR", Units: 1},
	}
	tr.AssignUnits(map[string]int{"CS 146": 3, "CS 151": 3})

	assert.Equal(t, 3, tr["CS 146"].Units)
	assert.Equal(t, 1, tr["PE 10"].Units)
	assert.Equal(t, 4, tr.TotalUnits())
}

func TestTranscriptMergeEnrollment(t *testing.T) {
	tr := Transcript{"CS 146": {Course: "CS 146", Grade: "A", Semester: "Fall 2023"}}
	added, skipped := tr.MergeEnrollment([]EnrollmentRow{
		{Course: "CS 151", Term: "Spring 2024", Description: "Object-Oriented Design"},
		{Course: "CS 146", Term: "Spring 2024"},
	})

	assert.Equal(t, 1, added)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "A", tr["CS 146"].Grade)
	assert.True(t, tr["CS 151"].InProgress())
	assert.Equal(t, "Object-Oriented Design", tr["CS 151"].Name)
}

func TestMajorDefinitionCourseUnits(t *testing.T) {
	def := &MajorDefinition{
		Name:   "MS Test",
		Tracks: []string{"data"},
		Requirements: []Requirement{
			{Category: "core", Node: FlatPool{Total: 6, Courses: []CourseOption{{"CS 200", 3}, {"CS 201", 3}}}},
			{Category: "spec", Node: SpecializationPool{Total: 3, Tracks: []TrackPool{{Track: "data", Courses: []CourseOption{{"CS 250", 3}}}}}},
			{Category: "culminating", Node: AlternativePaths{Total: 6, Paths: []Path{{Name: "thesis", Courses: []CourseOption{{"CS 299A", 3}}}}}},
			{Category: "electives", Node: MultiSection{Mode: SectionsShared, Total: 9, Sections: []Section{
				{Name: "a", Minimum: 3, Courses: []CourseOption{{"CS 260", 3}, {"CS 200", 4}}},
			}}},
		},
	}

	units := def.CourseUnits()
	assert.Equal(t, map[string]int{"CS 200": 3, "CS 201": 3, "CS 250": 3, "CS 299A": 3, "CS 260": 3}, units)
	assert.True(t, def.HasTracks())
}
