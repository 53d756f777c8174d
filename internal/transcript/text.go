// Package transcript turns raw student records into a domain.Transcript.
//
// The primary input is the plain-text transcript a student copies out of the
// records system. A secondary input is the current-enrollment export (HTML
// table or xlsx workbook) that lists courses still in progress.
package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"degreeplan/advisor/internal/domain"
	"degreeplan/advisor/internal/textfmt"

	log "github.com/sirupsen/logrus"
)

const (
	majorMarker       = "MAJOR:"
	semesterMarker    = "SEMESTER"
	totalMarker       = "TOTAL"
	semesterTotalLine = "SEMESTER TOTAL:"
	cumulativeLine    = "ALL COLLEGE:"

	maxLineSize = 1024 * 1024
)

// ErrUnreadableTranscript means the transcript text could not be scanned to
// the end, e.g. because a line exceeds the scanner limit.
var ErrUnreadableTranscript = errors.New("failed to read transcript")

// Parse scans transcript text line by line. Lines whose first two tokens form
// a course in valid are kept when they carry a passing grade; everything else
// is ignored except the major, semester header and GPA total lines.
// A partially scanned transcript is never returned.
func Parse(text string, valid domain.CourseSet) (*domain.ParsedTranscript, error) {
	result := &domain.ParsedTranscript{
		Courses:     make(domain.Transcript),
		SemesterGPA: make(map[string]string),
	}

	var (
		semester string
		ignored  int
		failed   int
	)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.Contains(line, majorMarker) {
			result.Major = strings.TrimSpace(strings.SplitN(line, majorMarker, 3)[1])
		}
		if strings.Contains(line, semesterMarker) && !strings.Contains(line, totalMarker) {
			semester = normalizeSemester(line)
		}

		tokens := strings.Fields(line)
		if len(tokens) < 2 {
			continue
		}

		code := tokens[0] + " " + tokens[1]
		switch {
		case valid.Contains(code):
			grade := tokens[len(tokens)-2]
			if !domain.IsPassingGrade(grade) {
				failed++
				continue
			}
			result.Courses[code] = domain.CourseRecord{
				Course:   code,
				Grade:    grade,
				Semester: semester,
				Name:     courseName(tokens[2:]),
			}
		case code == semesterTotalLine:
			if semester == "" {
				ignored++
				continue
			}
			result.SemesterGPA[semester] = tokens[len(tokens)-1]
		case code == cumulativeLine:
			result.GPA = tokens[len(tokens)-1]
		default:
			ignored++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableTranscript, err)
	}

	log.Debugf("Parsed transcript: major=%q, %d courses, %d semesters, %d non-passing, %d ignored lines",
		result.Major, len(result.Courses), len(result.SemesterGPA), failed, ignored)
	return result, nil
}

func normalizeSemester(line string) string {
	label := strings.ReplaceAll(strings.TrimSpace(line), semesterMarker+" ", "")
	return textfmt.Title(textfmt.CollapseSpaces(label))
}

// courseName joins the tokens after the course identifier up to the first
// numeric token (units, grade points).
func courseName(tokens []string) string {
	name := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if isDecimal(tok) {
			break
		}
		name = append(name, tok)
	}
	return strings.Join(name, " ")
}

// isDecimal accepts digits with at most one decimal point, e.g. "3", "3.0".
func isDecimal(tok string) bool {
	if tok == "" {
		return false
	}
	digits, dots := 0, 0
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}
