package requirements

import (
	"testing"

	"degreeplan/advisor/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDefinition = `
name: MS Test
slug: mstest
specialization_tracks: [Data, Systems]
requirements:
  - category: core
    kind: flat
    total: 6
    courses:
      - {course: CS 200, units: 3}
      - {course: CS 201, units: 3}
  - category: specialization
    kind: specialization
    total: 3
    tracks:
      - track: Data
        courses: [{course: CS 250, units: 3}]
      - track: Systems
        courses: [{course: CS 260, units: 3}]
  - category: electives
    kind: sections
    mode: shared
    total: 9
    sections:
      - name: breadth
        minimum: 3
        maximum: 6
        courses: [{course: CS 270, units: 3}]
      - name: depth
        minimum: 3
        tracks:
          - track: Data
            courses: [{course: CS 271, units: 3}]
          - track: Systems
            courses: [{course: CS 272, units: 3}]
  - category: culminating_experience
    kind: alternatives
    total: 6
    paths:
      - name: project
        courses: [{course: CS 298, units: 6}]
      - name: exam
        total: 3
        courses: [{course: CS 290, units: 3}]
`

func TestParseDefinition(t *testing.T) {
	def, err := ParseDefinition([]byte(validDefinition))
	require.NoError(t, err)

	assert.Equal(t, "MS Test", def.Name)
	assert.Equal(t, []string{"Data", "Systems"}, def.Tracks)
	require.Len(t, def.Requirements, 4)

	kinds := []domain.NodeKind{}
	for _, r := range def.Requirements {
		kinds = append(kinds, r.Node.Kind())
	}
	assert.Equal(t, []domain.NodeKind{domain.KindFlat, domain.KindSpecialization, domain.KindSections, domain.KindAlternatives}, kinds)

	spec := def.Requirements[1].Node.(domain.SpecializationPool)
	courses, ok := spec.CoursesFor("Systems")
	require.True(t, ok)
	assert.Equal(t, []domain.CourseOption{{Course: "CS 260", Units: 3}}, courses)

	sections := def.Requirements[2].Node.(domain.MultiSection)
	assert.Equal(t, domain.SectionsShared, sections.Mode)
	assert.False(t, sections.Sections[0].TrackKeyed())
	assert.True(t, sections.Sections[1].TrackKeyed())

	paths := def.Requirements[3].Node.(domain.AlternativePaths)
	assert.Equal(t, 6, paths.Paths[0].Total, "path total defaults to the category total")
	assert.Equal(t, 3, paths.Paths[1].Total)
}

func TestParseDefinitionRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown kind",
			yaml: `
name: X
requirements:
  - category: core
    kind: pick_any
    total: 3
    courses: [{course: CS 1, units: 3}]`,
			want: `unknown kind "pick_any"`,
		},
		{
			name: "missing units",
			yaml: `
name: X
requirements:
  - category: core
    kind: flat
    total: 3
    courses: [{course: CS 1}]`,
			want: "CS 1 must carry positive units",
		},
		{
			name: "unknown field",
			yaml: `
name: X
requirements:
  - category: core
    kind: flat
    total: 3
    credits: 3
    courses: [{course: CS 1, units: 3}]`,
			want: "field credits not found",
		},
		{
			name: "specialization without tracks",
			yaml: `
name: X
requirements:
  - category: spec
    kind: specialization
    total: 3
    tracks:
      - track: Data
        courses: [{course: CS 1, units: 3}]`,
			want: "need specialization_tracks",
		},
		{
			name: "track not covered",
			yaml: `
name: X
specialization_tracks: [Data, Systems]
requirements:
  - category: spec
    kind: specialization
    total: 3
    tracks:
      - track: Data
        courses: [{course: CS 1, units: 3}]`,
			want: "no courses for tracks [Systems]",
		},
		{
			name: "duplicate category",
			yaml: `
name: X
requirements:
  - category: core
    kind: flat
    total: 3
    courses: [{course: CS 1, units: 3}]
  - category: core
    kind: flat
    total: 3
    courses: [{course: CS 2, units: 3}]`,
			want: "duplicate category",
		},
		{
			name: "bad section mode",
			yaml: `
name: X
requirements:
  - category: electives
    kind: sections
    mode: cumulative
    sections:
      - name: a
        minimum: 3
        courses: [{course: CS 1, units: 3}]`,
			want: `unknown section mode "cumulative"`,
		},
		{
			name: "shared without total",
			yaml: `
name: X
requirements:
  - category: electives
    kind: sections
    mode: shared
    sections:
      - name: a
        minimum: 3
        courses: [{course: CS 1, units: 3}]`,
			want: "total must be positive",
		},
		{
			name: "section name collides with grand total",
			yaml: `
name: X
requirements:
  - category: electives
    kind: sections
    mode: shared
    total: 6
    sections:
      - name: electives
        minimum: 3
        courses: [{course: CS 1, units: 3}]`,
			want: "collides with the grand total",
		},
		{
			name: "wrong list for kind",
			yaml: `
name: X
requirements:
  - category: core
    kind: flat
    total: 3
    courses: [{course: CS 1, units: 3}]
    paths:
      - name: thesis
        courses: [{course: CS 2, units: 3}]`,
			want: "flat kind does not take paths",
		},
		{
			name: "path without total",
			yaml: `
name: X
requirements:
  - category: culminating
    kind: alternatives
    paths:
      - name: thesis
        courses: [{course: CS 2, units: 3}]`,
			want: "total must be positive",
		},
		{
			name: "maximum below minimum",
			yaml: `
name: X
requirements:
  - category: electives
    kind: sections
    mode: independent
    sections:
      - name: a
        minimum: 6
        maximum: 3
        courses: [{course: CS 1, units: 3}]`,
			want: "maximum 3 is below minimum 6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinition([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalidDefinition)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
