// Package report renders a resolved recommendation as the plain-text
// grounding document handed to the downstream text generator.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"degreeplan/advisor/internal/domain"
	"degreeplan/advisor/internal/textfmt"
)

const preamble = "The courses listed below are the only courses that are still required for the degree.\n" +
	"If there are no courses recommended below, the user is fully ready to graduate.\n" +
	"Separate recommendations are made for each specialization, if they exist.\n" +
	"When recommending courses for an upcoming semester, recommend up to 4 courses from those listed below by this order of priority:\n" +
	"Core Courses, Specialization, Electives, Writing Credit, Culminating Experience\n" +
	"Skip the listed categories that are not mentioned below.\n" +
	"Culminating Experience courses can only be recommended if the rest of the listed courses number less than 4.\n" +
	"The following details can be treated as the user's transcript:\n"

const fullyReady = "\nNo remaining required courses were found. The user is fully ready to graduate.\n"

// Header is the student context printed above the itemized requirements.
type Header struct {
	Major       string
	GPA         string
	SemesterGPA map[string]string
}

// Render formats rec. The output depends only on its inputs: categories and
// sections keep their declaration order and course options keep the order
// the resolver left them in.
func Render(rec *domain.Recommendation, h Header) string {
	var b strings.Builder
	b.WriteString(preamble)
	writeHeader(&b, h)

	if !rec.Supported {
		fmt.Fprintf(&b, "There is no requirement data for the %s major, so no remaining courses can be listed.\n", rec.Major)
		return b.String()
	}

	found := false
	if rec.MultiTrack {
		for _, track := range rec.Tracks {
			body := trackBody(track, true)
			if body == "" {
				fmt.Fprintf(&b, "The [%s] specialization has no remaining requirements. The user is ready to graduate for this specialization.\n\n", track.Track)
				continue
			}
			fmt.Fprintf(&b, "Remaining required credits for [%s] specialization:\n%s\n", track.Track, body)
			found = true
		}
	} else {
		var body string
		if len(rec.Tracks) > 0 {
			body = trackBody(rec.Tracks[0], false)
		}
		if body != "" {
			b.WriteString(body + "\n")
			found = true
		}
	}

	if !found {
		b.WriteString(fullyReady)
	}
	return b.String()
}

func writeHeader(b *strings.Builder, h Header) {
	fmt.Fprintf(b, "User Transcript:\n Major: %s\n Current GPA: %s\n", h.Major, h.GPA)
	for _, sem := range semesterOrder(h.SemesterGPA) {
		fmt.Fprintf(b, " %s GPA: %s\n", sem, h.SemesterGPA[sem])
	}
	b.WriteString("\n")
}

// trackBody lists every unmet section of track, or returns "" when all are met.
func trackBody(track domain.TrackResult, multiTrack bool) string {
	var b strings.Builder
	for _, cat := range track.Categories {
		category := textfmt.Deslug(cat.Category)
		for _, s := range cat.Sections {
			if s.Met {
				continue
			}
			switch {
			case cat.HasSections():
				fmt.Fprintf(&b, "\t%s section of %s still requires: %d credits.\n", textfmt.Deslug(s.Name), category, s.Remaining)
			case multiTrack:
				fmt.Fprintf(&b, "\t%s still requires: %d credits.\n", category, s.Remaining)
			default:
				fmt.Fprintf(&b, "\t%s category still requires: %d credits.\n", category, s.Remaining)
			}
			fmt.Fprintf(&b, "\t\tCourses you can take: %s\n", strings.Join(s.Options, ", "))
		}
	}
	return b.String()
}

var seasons = map[string]int{"Winter": 0, "Spring": 1, "Summer": 2, "Fall": 3}

// semesterOrder sorts labels such as "Fall 2023" chronologically. Labels
// that do not look like "<Season> <Year>" sort last, alphabetically.
func semesterOrder(gpas map[string]string) []string {
	keys := make([]string, 0, len(gpas))
	for k := range gpas {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		yi, si, oki := semesterKey(keys[i])
		yj, sj, okj := semesterKey(keys[j])
		switch {
		case oki && okj && yi != yj:
			return yi < yj
		case oki && okj && si != sj:
			return si < sj
		case oki != okj:
			return oki
		}
		return keys[i] < keys[j]
	})
	return keys
}

func semesterKey(label string) (year, season int, ok bool) {
	parts := strings.Fields(label)
	if len(parts) != 2 {
		return 0, 0, false
	}
	season, known := seasons[parts[0]]
	year, err := strconv.Atoi(parts[1])
	if !known || err != nil {
		return 0, 0, false
	}
	return year, season, true
}
