package domain

import "fmt"

// NodeKind tags the fulfillment policy of a requirement category.
type NodeKind string

const (
	KindFlat           NodeKind = "flat"
	KindSpecialization NodeKind = "specialization"
	KindAlternatives   NodeKind = "alternatives"
	KindSections       NodeKind = "sections"
)

// SectionMode decides how a multi-section category combines its sections.
type SectionMode string

const (
	// SectionsIndependent gives every section its own obligation.
	SectionsIndependent SectionMode = "independent"
	// SectionsShared gives every section a floor and adds a grand total across them.
	SectionsShared SectionMode = "shared"
)

type CourseOption struct {
	Course string `json:"course" yaml:"course"`
	Units  int    `json:"units" yaml:"units"`
}

// Node is one of FlatPool, SpecializationPool, AlternativePaths or MultiSection.
type Node interface {
	Kind() NodeKind
	node()
}

// Requirement is a named top-level category of a major.
type Requirement struct {
	Category string
	Node     Node
}

type FlatPool struct {
	Total   int
	Courses []CourseOption
}

// TrackPool is the course list a specialization track uses for a pool or section.
type TrackPool struct {
	Track   string
	Courses []CourseOption
}

type SpecializationPool struct {
	Total  int
	Tracks []TrackPool
}

// Path is one alternative of an AlternativePaths category, e.g. thesis or project.
type Path struct {
	Name    string
	Total   int
	Courses []CourseOption
}

type AlternativePaths struct {
	Total int
	Paths []Path
}

// Section is one named part of a MultiSection category. Its courses are either
// shared by every track (Courses) or keyed by track (Tracks).
type Section struct {
	Name    string
	Minimum int
	Maximum int
	Courses []CourseOption
	Tracks  []TrackPool
}

type MultiSection struct {
	Mode     SectionMode
	Total    int
	Sections []Section
}

func (FlatPool) Kind() NodeKind           { return KindFlat }
func (SpecializationPool) Kind() NodeKind { return KindSpecialization }
func (AlternativePaths) Kind() NodeKind   { return KindAlternatives }
func (MultiSection) Kind() NodeKind       { return KindSections }

func (FlatPool) node()           {}
func (SpecializationPool) node() {}
func (AlternativePaths) node()   {}
func (MultiSection) node()       {}

func lookupTrack(tracks []TrackPool, track string) ([]CourseOption, bool) {
	for _, tp := range tracks {
		if tp.Track == track {
			return tp.Courses, true
		}
	}
	return nil, false
}

func (p SpecializationPool) CoursesFor(track string) ([]CourseOption, bool) {
	return lookupTrack(p.Tracks, track)
}

// CoursesFor returns the section's candidate list for a track. Sections
// without per-track lists return the shared list for every track.
func (s Section) CoursesFor(track string) ([]CourseOption, bool) {
	if len(s.Tracks) == 0 {
		return s.Courses, true
	}
	return lookupTrack(s.Tracks, track)
}

func (s Section) TrackKeyed() bool {
	return len(s.Tracks) > 0
}

// MajorDefinition is the requirement tree of one supported major.
type MajorDefinition struct {
	Name         string
	Slug         string
	Tracks       []string
	Requirements []Requirement
}

func (m *MajorDefinition) HasTracks() bool {
	return len(m.Tracks) > 0
}

// CourseUnits collects the credit weight of every course listed anywhere in
// the tree. The first listing of a course wins.
func (m *MajorDefinition) CourseUnits() map[string]int {
	units := make(map[string]int)
	add := func(opts []CourseOption) {
		for _, o := range opts {
			if _, ok := units[o.Course]; !ok {
				units[o.Course] = o.Units
			}
		}
	}
	addTracks := func(tracks []TrackPool) {
		for _, tp := range tracks {
			add(tp.Courses)
		}
	}

	for _, req := range m.Requirements {
		switch n := req.Node.(type) {
		case FlatPool:
			add(n.Courses)
		case SpecializationPool:
			addTracks(n.Tracks)
		case AlternativePaths:
			for _, p := range n.Paths {
				add(p.Courses)
			}
		case MultiSection:
			for _, s := range n.Sections {
				add(s.Courses)
				addTracks(s.Tracks)
			}
		}
	}
	return units
}

func (m *MajorDefinition) String() string {
	return fmt.Sprintf("%s (%d categories, %d tracks)", m.Name, len(m.Requirements), len(m.Tracks))
}
