// Package advisor runs the whole reconciliation pipeline for one student:
// parse the transcript, fold in current enrollment, resolve the declared
// major and render the report.
package advisor

import (
	"fmt"
	"time"

	"degreeplan/advisor/internal/domain"
	"degreeplan/advisor/internal/report"
	"degreeplan/advisor/internal/resolver"
	"degreeplan/advisor/internal/transcript"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Catalog is the loaded set of supported majors plus the valid course list.
type Catalog interface {
	resolver.Catalog
	Courses() domain.CourseSet
}

type Request struct {
	ID         string
	StudentID  string
	Transcript string
	// Enrollment is an optional current-enrollment export (HTML or xlsx).
	Enrollment []byte
	// Major overrides the major printed on the transcript when set.
	Major string
}

type Advisor struct {
	catalog  Catalog
	resolver *resolver.Resolver
}

func New(catalog Catalog) *Advisor {
	return &Advisor{
		catalog:  catalog,
		resolver: resolver.New(catalog),
	}
}

// Advise never mutates shared state, so it is safe to call from many
// goroutines at once. Unreadable input wraps transcript.ErrUnreadableTranscript
// or transcript.ErrMalformedExport; anything else is a catalog fault.
func (a *Advisor) Advise(req Request) (*domain.AdvisingReport, error) {
	parsed, err := transcript.Parse(req.Transcript, a.catalog.Courses())
	if err != nil {
		return nil, err
	}

	if len(req.Enrollment) > 0 {
		rows, err := transcript.ParseEnrollment(req.Enrollment)
		if err != nil {
			return nil, fmt.Errorf("failed to parse enrollment export: %w", err)
		}
		added, skipped := parsed.Courses.MergeEnrollment(rows)
		log.Debugf("Merged enrollment: %d added, %d already on transcript", added, skipped)
	}

	major := parsed.Major
	if req.Major != "" {
		major = req.Major
	}
	if def, ok := a.catalog.Lookup(major); ok {
		parsed.Courses.AssignUnits(def.CourseUnits())
	}

	rec, err := a.resolver.Recommend(parsed.Courses, major)
	if err != nil {
		return nil, err
	}
	text := report.Render(rec, report.Header{
		Major:       major,
		GPA:         parsed.GPA,
		SemesterGPA: parsed.SemesterGPA,
	})

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	log.Infof("✅ Advised %s (%s): complete=%t", id, major, rec.Complete())
	return &domain.AdvisingReport{
		ID:             id,
		StudentID:      req.StudentID,
		Major:          major,
		GPA:            parsed.GPA,
		SemesterGPA:    parsed.SemesterGPA,
		Recommendation: rec,
		Text:           text,
		Status:         domain.ReportStatusDone,
		CreatedAt:      time.Now().UTC(),
	}, nil
}
