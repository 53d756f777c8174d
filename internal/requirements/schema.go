package requirements

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"degreeplan/advisor/internal/domain"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDefinition wraps every problem found while validating a major definition.
var ErrInvalidDefinition = errors.New("invalid major definition")

type rawDefinition struct {
	Name         string           `yaml:"name"`
	Slug         string           `yaml:"slug"`
	Tracks       []string         `yaml:"specialization_tracks"`
	Requirements []rawRequirement `yaml:"requirements"`
}

type rawRequirement struct {
	Category string                `yaml:"category"`
	Kind     string                `yaml:"kind"`
	Mode     string                `yaml:"mode"`
	Total    int                   `yaml:"total"`
	Courses  []domain.CourseOption `yaml:"courses"`
	Tracks   []rawTrackPool        `yaml:"tracks"`
	Paths    []rawPath             `yaml:"paths"`
	Sections []rawSection          `yaml:"sections"`
}

type rawTrackPool struct {
	Track   string                `yaml:"track"`
	Courses []domain.CourseOption `yaml:"courses"`
}

type rawPath struct {
	Name    string                `yaml:"name"`
	Total   int                   `yaml:"total"`
	Courses []domain.CourseOption `yaml:"courses"`
}

type rawSection struct {
	Name    string                `yaml:"name"`
	Minimum int                   `yaml:"minimum"`
	Maximum int                   `yaml:"maximum"`
	Courses []domain.CourseOption `yaml:"courses"`
	Tracks  []rawTrackPool        `yaml:"tracks"`
}

// ParseDefinition strictly decodes one major definition and validates every
// requirement node. Unknown fields and unknown node kinds are rejected.
func ParseDefinition(data []byte) (*domain.MajorDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw rawDefinition
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	v := &validator{tracks: raw.Tracks}
	def := v.definition(&raw)
	if len(v.problems) > 0 {
		name := lo.Ternary(raw.Slug != "", raw.Slug, raw.Name)
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidDefinition, name, strings.Join(v.problems, "; "))
	}
	return def, nil
}

type validator struct {
	tracks   []string
	problems []string
}

func (v *validator) fail(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) definition(raw *rawDefinition) *domain.MajorDefinition {
	if raw.Name == "" {
		v.fail("name is required")
	}
	if dup := lo.FindDuplicates(raw.Tracks); len(dup) > 0 {
		v.fail("duplicate specialization tracks %v", dup)
	}
	if len(raw.Requirements) == 0 {
		v.fail("at least one requirement is required")
	}

	def := &domain.MajorDefinition{
		Name:   raw.Name,
		Slug:   raw.Slug,
		Tracks: raw.Tracks,
	}

	seen := make(map[string]bool)
	for i, req := range raw.Requirements {
		where := fmt.Sprintf("requirements[%d]", i)
		if req.Category == "" {
			v.fail("%s: category is required", where)
			continue
		}
		where = fmt.Sprintf("%s (%s)", where, req.Category)
		if seen[req.Category] {
			v.fail("%s: duplicate category", where)
			continue
		}
		seen[req.Category] = true

		if node := v.node(where, &req); node != nil {
			def.Requirements = append(def.Requirements, domain.Requirement{Category: req.Category, Node: node})
		}
	}
	return def
}

func (v *validator) node(where string, req *rawRequirement) domain.Node {
	switch domain.NodeKind(req.Kind) {
	case domain.KindFlat:
		v.only(where, req, "courses")
		v.positive(where, "total", req.Total)
		v.courses(where, req.Courses)
		return domain.FlatPool{Total: req.Total, Courses: req.Courses}

	case domain.KindSpecialization:
		v.only(where, req, "tracks")
		v.positive(where, "total", req.Total)
		return domain.SpecializationPool{Total: req.Total, Tracks: v.trackPools(where, req.Tracks)}

	case domain.KindAlternatives:
		v.only(where, req, "paths")
		return domain.AlternativePaths{Total: req.Total, Paths: v.paths(where, req)}

	case domain.KindSections:
		v.only(where, req, "sections")
		return v.sections(where, req)

	default:
		v.fail("%s: unknown kind %q", where, req.Kind)
		return nil
	}
}

// only rejects candidate lists that do not belong to the node's kind.
func (v *validator) only(where string, req *rawRequirement, allowed string) {
	present := []struct {
		field string
		set   bool
	}{
		{"courses", len(req.Courses) > 0},
		{"tracks", len(req.Tracks) > 0},
		{"paths", len(req.Paths) > 0},
		{"sections", len(req.Sections) > 0},
	}
	for _, p := range present {
		if p.set && p.field != allowed {
			v.fail("%s: %s kind does not take %s", where, req.Kind, p.field)
		}
	}
	if req.Mode != "" && domain.NodeKind(req.Kind) != domain.KindSections {
		v.fail("%s: mode only applies to sections", where)
	}
}

func (v *validator) positive(where, field string, n int) {
	if n <= 0 {
		v.fail("%s: %s must be positive", where, field)
	}
}

func (v *validator) courses(where string, opts []domain.CourseOption) {
	if len(opts) == 0 {
		v.fail("%s: course list is empty", where)
	}
	for i, o := range opts {
		if strings.TrimSpace(o.Course) == "" {
			v.fail("%s: courses[%d] has no course", where, i)
		}
		if o.Units <= 0 {
			v.fail("%s: %s must carry positive units", where, o.Course)
		}
	}
}

// trackPools requires exactly one list per declared track of the major.
func (v *validator) trackPools(where string, raws []rawTrackPool) []domain.TrackPool {
	if len(v.tracks) == 0 {
		v.fail("%s: track-keyed courses need specialization_tracks on the major", where)
		return nil
	}

	pools := make([]domain.TrackPool, 0, len(raws))
	for _, rt := range raws {
		if !lo.Contains(v.tracks, rt.Track) {
			v.fail("%s: unknown track %q", where, rt.Track)
			continue
		}
		v.courses(fmt.Sprintf("%s[%s]", where, rt.Track), rt.Courses)
		pools = append(pools, domain.TrackPool{Track: rt.Track, Courses: rt.Courses})
	}

	declared := lo.Map(raws, func(rt rawTrackPool, _ int) string { return rt.Track })
	if dup := lo.FindDuplicates(declared); len(dup) > 0 {
		v.fail("%s: duplicate tracks %v", where, dup)
	}
	if missing, _ := lo.Difference(v.tracks, declared); len(missing) > 0 {
		v.fail("%s: no courses for tracks %v", where, missing)
	}
	return pools
}

func (v *validator) paths(where string, req *rawRequirement) []domain.Path {
	if len(req.Paths) == 0 {
		v.fail("%s: at least one path is required", where)
	}

	paths := make([]domain.Path, 0, len(req.Paths))
	names := make(map[string]bool)
	for i, rp := range req.Paths {
		pw := fmt.Sprintf("%s.paths[%d]", where, i)
		if rp.Name == "" {
			v.fail("%s: name is required", pw)
		} else if names[rp.Name] {
			v.fail("%s: duplicate path %q", pw, rp.Name)
		}
		names[rp.Name] = true

		total := rp.Total
		if total == 0 {
			total = req.Total
		}
		v.positive(pw, "total", total)
		v.courses(pw, rp.Courses)
		paths = append(paths, domain.Path{Name: rp.Name, Total: total, Courses: rp.Courses})
	}
	return paths
}

func (v *validator) sections(where string, req *rawRequirement) domain.Node {
	mode := domain.SectionMode(req.Mode)
	switch mode {
	case domain.SectionsShared:
		v.positive(where, "total", req.Total)
	case domain.SectionsIndependent:
	default:
		v.fail("%s: unknown section mode %q", where, req.Mode)
	}
	if len(req.Sections) == 0 {
		v.fail("%s: at least one section is required", where)
	}

	sections := make([]domain.Section, 0, len(req.Sections))
	names := make(map[string]bool)
	for i, rs := range req.Sections {
		sw := fmt.Sprintf("%s.sections[%d]", where, i)
		switch {
		case rs.Name == "":
			v.fail("%s: name is required", sw)
		case names[rs.Name]:
			v.fail("%s: duplicate section %q", sw, rs.Name)
		case mode == domain.SectionsShared && rs.Name == req.Category:
			v.fail("%s: section name collides with the grand total entry", sw)
		}
		names[rs.Name] = true

		v.positive(sw, "minimum", rs.Minimum)
		if rs.Maximum != 0 && rs.Maximum < rs.Minimum {
			v.fail("%s: maximum %d is below minimum %d", sw, rs.Maximum, rs.Minimum)
		}

		section := domain.Section{Name: rs.Name, Minimum: rs.Minimum, Maximum: rs.Maximum}
		switch {
		case len(rs.Courses) > 0 && len(rs.Tracks) > 0:
			v.fail("%s: use either courses or tracks, not both", sw)
		case len(rs.Tracks) > 0:
			section.Tracks = v.trackPools(sw, rs.Tracks)
		default:
			v.courses(sw, rs.Courses)
			section.Courses = rs.Courses
		}
		sections = append(sections, section)
	}

	return domain.MultiSection{Mode: mode, Total: req.Total, Sections: sections}
}
