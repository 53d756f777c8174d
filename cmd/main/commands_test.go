package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"degreeplan/advisor/internal/domain"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const transcriptText = `MAJOR: MS Computer Science
SEMESTER FALL 2024
CS 255  DESIGN AND ANALYSIS OF ALGORITHMS  3.0  A  12.0
SEMESTER TOTAL:  3.0  12.0  4.00
ALL COLLEGE:  3.0  12.0  4.00
`

func TestMajorsCommand(t *testing.T) {
	out, err := execute(t, "majors")
	require.NoError(t, err)

	assert.Contains(t, out, "MS Computer Science\n")
	assert.Contains(t, out, "MS Software Engineering\tCybersecurity, Data Science, Enterprise Software\n")
}

func TestAdviseCommand(t *testing.T) {
	path := writeFile(t, "transcript.txt", transcriptText)

	out, err := execute(t, "advise", "--transcript", path)
	require.NoError(t, err)
	assert.Contains(t, out, " Major: MS Computer Science\n Current GPA: 4.00\n")
	assert.Contains(t, out, "\tCore Courses category still requires: 6 credits.\n")
}

func TestAdviseCommandJSON(t *testing.T) {
	path := writeFile(t, "transcript.txt", transcriptText)

	out, err := execute(t, "advise", "--transcript", path, "--major", "MS Artificial Intelligence", "--json")
	require.NoError(t, err)

	var report domain.AdvisingReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "MS Artificial Intelligence", report.Major)
	assert.True(t, report.Recommendation.Supported)
}

func TestAdviseCommandErrors(t *testing.T) {
	_, err := execute(t, "advise")
	require.Error(t, err, "transcript flag is required")

	_, err = execute(t, "advise", "--transcript", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	path := writeFile(t, "transcript.txt", transcriptText)
	bad := writeFile(t, "enrollment.html", "<table><tr><th>Course</th></tr></table>")
	_, err = execute(t, "advise", "--transcript", path, "--enrollment", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestInvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")
	_, err := execute(t, "majors")
	require.Error(t, err)
}
