// Package resolver reconciles a transcript against a major's requirement tree.
//
// Every resolution pass works on its own copy of the transcript. Each course
// found in a section's pool is removed from that copy, so a single transcript
// entry is credited to at most one section across the whole tree. Categories
// are evaluated in declaration order, which decides where a course shared by
// several pools ends up.
package resolver

import (
	"errors"
	"fmt"

	"degreeplan/advisor/internal/domain"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

var ErrUnknownTrack = errors.New("unknown specialization track")

// Catalog looks up requirement trees by exact major name.
type Catalog interface {
	Lookup(name string) (*domain.MajorDefinition, bool)
}

type Resolver struct {
	catalog Catalog
}

func New(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Recommend resolves transcript against the named major, once per
// specialization track when the major has tracks. An unsupported major yields
// a Recommendation with Supported=false. A track that fails to resolve fails
// the whole recommendation. transcript is never modified.
func (r *Resolver) Recommend(transcript domain.Transcript, major string) (*domain.Recommendation, error) {
	rec := &domain.Recommendation{Major: major}

	def, ok := r.catalog.Lookup(major)
	if !ok {
		log.Infof("No requirement data for major %q", major)
		return rec, nil
	}
	rec.Supported = true

	if !def.HasTracks() {
		tr, err := ResolveTrack(transcript, def, "")
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", def.Name, err)
		}
		rec.Tracks = []domain.TrackResult{tr}
		return rec, nil
	}

	rec.MultiTrack = true
	for _, track := range def.Tracks {
		tr, err := ResolveTrack(transcript, def, track)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s track %s: %w", def.Name, track, err)
		}
		rec.Tracks = append(rec.Tracks, tr)
	}
	return rec, nil
}

// ResolveTrack runs one resolution pass for a single track ("" for majors
// without tracks) on a private copy of transcript.
func ResolveTrack(transcript domain.Transcript, def *domain.MajorDefinition, track string) (domain.TrackResult, error) {
	if track != "" && !lo.Contains(def.Tracks, track) {
		return domain.TrackResult{}, fmt.Errorf("%w: %q for %s", ErrUnknownTrack, track, def.Name)
	}

	working := transcript.Clone()
	result := domain.TrackResult{
		Track:      track,
		Categories: make([]domain.CategoryResult, 0, len(def.Requirements)),
	}

	for _, req := range def.Requirements {
		sections, err := resolveNode(req, track, working)
		if err != nil {
			return domain.TrackResult{}, err
		}
		result.Categories = append(result.Categories, domain.CategoryResult{
			Category: req.Category,
			Kind:     req.Node.Kind(),
			Sections: sections,
		})
	}

	log.Debugf("Resolved %s track %q: %d credits matched, %d transcript entries unused",
		def.Name, track, result.MatchedCredits(), len(working))
	return result, nil
}

func resolveNode(req domain.Requirement, track string, working domain.Transcript) ([]domain.SectionResult, error) {
	switch n := req.Node.(type) {
	case domain.FlatPool:
		matched, remaining := matchPool(n.Courses, working)
		return []domain.SectionResult{sectionResult(req.Category, n.Total, matched, remaining)}, nil

	case domain.SpecializationPool:
		courses, ok := n.CoursesFor(track)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no courses in %s", ErrUnknownTrack, track, req.Category)
		}
		matched, remaining := matchPool(courses, working)
		return []domain.SectionResult{sectionResult(req.Category, n.Total, matched, remaining)}, nil

	case domain.AlternativePaths:
		return resolveAlternatives(n, working), nil

	case domain.MultiSection:
		return resolveSections(req.Category, n, track, working)

	default:
		return nil, fmt.Errorf("category %s has unsupported node %T", req.Category, req.Node)
	}
}

// resolveAlternatives evaluates every path in declaration order against the
// shared working copy, then reports the first path that is met or partially
// progressed, else the second under the same test, else all paths.
func resolveAlternatives(n domain.AlternativePaths, working domain.Transcript) []domain.SectionResult {
	results := make([]domain.SectionResult, len(n.Paths))
	for i, p := range n.Paths {
		matched, remaining := matchPool(p.Courses, working)
		results[i] = sectionResult(p.Name, p.Total, matched, remaining)
	}

	for i := 0; i < len(results) && i < 2; i++ {
		shortfall := results[i].Remaining
		if shortfall == 0 || shortfall < n.Paths[i].Total {
			return results[i : i+1]
		}
	}
	return results
}

// resolveSections handles both section modes. In shared mode a synthetic
// section named after the category reports any grand-total deficit, offering
// every course still untaken in any section.
func resolveSections(category string, n domain.MultiSection, track string, working domain.Transcript) ([]domain.SectionResult, error) {
	results := make([]domain.SectionResult, 0, len(n.Sections)+1)
	total := 0
	var leftovers []domain.CourseOption

	for _, s := range n.Sections {
		courses, ok := s.CoursesFor(track)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no courses in %s.%s", ErrUnknownTrack, track, category, s.Name)
		}
		matched, remaining := matchPool(courses, working)
		results = append(results, sectionResult(s.Name, s.Minimum, matched, remaining))
		total += matched
		leftovers = append(leftovers, remaining...)
	}

	if n.Mode == domain.SectionsShared && total < n.Total {
		results = append(results, domain.SectionResult{
			Name:      category,
			Options:   lo.Uniq(courseIDs(leftovers)),
			Remaining: n.Total - total,
		})
	}
	return results, nil
}
