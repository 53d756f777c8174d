package transcript

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"degreeplan/advisor/internal/domain"
	"degreeplan/advisor/internal/textfmt"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrMalformedExport is wrapped by every failure caused by the export's
	// content rather than by the reader.
	ErrMalformedExport = errors.New("malformed enrollment export")
	// ErrMissingColumns means no table in the export has the required columns.
	ErrMissingColumns = fmt.Errorf("%w: missing required columns", ErrMalformedExport)
	// ErrNoTable means the export contains no table or sheet at all.
	ErrNoTable = fmt.Errorf("%w: contains no table", ErrMalformedExport)
)

const (
	columnCourse      = "course"
	columnTerm        = "term"
	columnDescription = "description"
	columnGrade       = "grade"

	// Exports sometimes carry a title block above the header row.
	maxHeaderScan = 10
)

var requiredColumns = []string{"Course", "Term", "Grade"}

// zip local file header; every xlsx workbook starts with it
var xlsxMagic = []byte("PK\x03\x04")

// ParseEnrollment sniffs the export format and returns its in-progress rows.
func ParseEnrollment(data []byte) ([]domain.EnrollmentRow, error) {
	if bytes.HasPrefix(data, xlsxMagic) {
		return ParseEnrollmentXLSX(bytes.NewReader(data))
	}
	return ParseEnrollmentHTML(bytes.NewReader(data))
}

// ParseEnrollmentHTML reads the first HTML table that has Course, Term and
// Grade columns.
func ParseEnrollmentHTML(r io.Reader) ([]domain.EnrollmentRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML: %w", ErrMalformedExport, err)
	}

	var tables [][][]string
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		var rows [][]string
		table.Find("tr").Each(func(j int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th, td").Each(func(k int, cell *goquery.Selection) {
				cells = append(cells, textfmt.CollapseSpaces(cell.Text()))
			})
			rows = append(rows, cells)
		})
		tables = append(tables, rows)
	})

	log.Debugf("Found %d tables in enrollment HTML", len(tables))
	return extractFromTables(tables)
}

// ParseEnrollmentXLSX reads the first sheet that has Course, Term and Grade
// columns.
func ParseEnrollmentXLSX(r io.Reader) ([]domain.EnrollmentRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %w", ErrMalformedExport, err)
	}
	defer f.Close()

	var tables [][][]string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			log.Warnf("Failed to read sheet %q: %v", sheet, err)
			continue
		}
		tables = append(tables, rows)
	}

	log.Debugf("Found %d sheets in enrollment workbook", len(tables))
	return extractFromTables(tables)
}

type columnIndex struct {
	course, term, description, grade int
}

func extractFromTables(tables [][][]string) ([]domain.EnrollmentRow, error) {
	if len(tables) == 0 {
		return nil, ErrNoTable
	}

	var missing []string
	for _, rows := range tables {
		idx, headerRow, miss := locateHeader(rows)
		if miss != nil {
			if missing == nil {
				missing = miss
			}
			continue
		}
		return extractRows(rows[headerRow+1:], idx), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
}

// locateHeader finds the header row and column positions. When no row
// qualifies it returns the columns missing from the best candidate.
func locateHeader(rows [][]string) (columnIndex, int, []string) {
	var best []string
	for i := 0; i < len(rows) && i < maxHeaderScan; i++ {
		idx, missing := locateColumns(rows[i])
		if len(missing) == 0 {
			return idx, i, nil
		}
		if best == nil || len(missing) < len(best) {
			best = missing
		}
	}
	if best == nil {
		best = requiredColumns
	}
	return columnIndex{}, -1, best
}

func locateColumns(header []string) (columnIndex, []string) {
	idx := columnIndex{course: -1, term: -1, description: -1, grade: -1}
	for i, name := range header {
		switch strings.ToLower(textfmt.CollapseSpaces(name)) {
		case columnCourse:
			idx.course = i
		case columnTerm:
			idx.term = i
		case columnDescription:
			idx.description = i
		case columnGrade:
			idx.grade = i
		}
	}

	var missing []string
	if idx.course < 0 {
		missing = append(missing, "Course")
	}
	if idx.term < 0 {
		missing = append(missing, "Term")
	}
	if idx.grade < 0 {
		missing = append(missing, "Grade")
	}
	return idx, missing
}

// extractRows keeps ungraded rows only; graded rows already appear on the
// text transcript.
func extractRows(rows [][]string, idx columnIndex) []domain.EnrollmentRow {
	out := make([]domain.EnrollmentRow, 0, len(rows))
	graded := 0
	for _, row := range rows {
		course := textfmt.CollapseSpaces(cell(row, idx.course))
		if course == "" {
			continue
		}
		if cell(row, idx.grade) != "" {
			graded++
			continue
		}
		out = append(out, domain.EnrollmentRow{
			Course:      course,
			Term:        cell(row, idx.term),
			Description: cell(row, idx.description),
		})
	}

	log.Debugf("Extracted %d in-progress enrollment rows (%d graded rows dropped)", len(out), graded)
	return out
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
