// Package requirements loads and validates the requirement trees of the
// supported majors.
package requirements

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"degreeplan/advisor/internal/domain"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Major names one supported major and the slug its definition is stored under.
type Major struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SupportedMajors is the fixed set of majors with requirement data. Lookups
// match the declared major name exactly.
var SupportedMajors = []Major{
	{Name: "MS Artificial Intelligence", Slug: "msai"},
	{Name: "MS Computer Engineering", Slug: "mscmpe"},
	{Name: "MS Computer Science", Slug: "mscs"},
	{Name: "MS Software Engineering", Slug: "msse"},
}

// Registry is read-only after Load and safe to share between goroutines.
type Registry struct {
	majors  map[string]*domain.MajorDefinition
	courses domain.CourseSet
}

// Load reads the course list and every supported major from src. Any invalid
// definition fails the whole load.
func Load(ctx context.Context, src Source) (*Registry, error) {
	reg := &Registry{
		majors: make(map[string]*domain.MajorDefinition, len(SupportedMajors)),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := src.CourseList(ctx)
		if err != nil {
			return fmt.Errorf("failed to load course list: %w", err)
		}
		courses, err := domain.ReadCourseSet(bytes.NewReader(data))
		if err != nil {
			return err
		}
		mu.Lock()
		reg.courses = courses
		mu.Unlock()
		return nil
	})

	for _, major := range SupportedMajors {
		g.Go(func() error {
			data, err := src.Definition(ctx, major.Slug)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", major.Name, err)
			}
			def, err := ParseDefinition(data)
			if err != nil {
				return err
			}
			if def.Name != major.Name {
				return fmt.Errorf("%w: %s: declares name %q, expected %q", ErrInvalidDefinition, major.Slug, def.Name, major.Name)
			}
			def.Slug = major.Slug

			mu.Lock()
			reg.majors[major.Name] = def
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Courses listed in a requirement tree are always recognized on transcripts.
	for _, def := range reg.majors {
		for course := range def.CourseUnits() {
			if !reg.courses.Contains(course) {
				log.Debugf("Course %s from %s is missing from the course list, adding it", course, def.Name)
				reg.courses.Add(course)
			}
		}
	}

	log.Infof("✅ Loaded %d majors and %d courses", len(reg.majors), len(reg.courses))
	return reg, nil
}

// Lookup returns the definition for an exact major name. Unsupported majors
// report false; that is a known gap in the data, not an error.
func (r *Registry) Lookup(name string) (*domain.MajorDefinition, bool) {
	def, ok := r.majors[name]
	return def, ok
}

// Majors returns the loaded definitions in SupportedMajors order.
func (r *Registry) Majors() []*domain.MajorDefinition {
	out := make([]*domain.MajorDefinition, 0, len(r.majors))
	for _, m := range SupportedMajors {
		if def, ok := r.majors[m.Name]; ok {
			out = append(out, def)
		}
	}
	return out
}

// Courses is the set of identifiers the transcript parser recognizes.
// Callers must not modify it.
func (r *Registry) Courses() domain.CourseSet {
	return r.courses
}
