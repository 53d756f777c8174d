package requirements

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed data/*.yaml data/courses.txt
var embedded embed.FS

// Source supplies the raw course list and per-major definition documents.
type Source interface {
	CourseList(ctx context.Context) ([]byte, error)
	Definition(ctx context.Context, slug string) ([]byte, error)
}

type embeddedSource struct{}

// EmbeddedSource serves the definitions compiled into the binary.
func EmbeddedSource() Source {
	return embeddedSource{}
}

func (embeddedSource) CourseList(_ context.Context) ([]byte, error) {
	return embedded.ReadFile("data/courses.txt")
}

func (embeddedSource) Definition(_ context.Context, slug string) ([]byte, error) {
	return embedded.ReadFile("data/" + slug + ".yaml")
}

type dirSource struct {
	coursesFile string
	majorsDir   string
}

// DirSource reads <majorsDir>/<slug>.yaml and a newline-delimited course list.
// An empty coursesFile falls back to the embedded course list.
func DirSource(coursesFile, majorsDir string) Source {
	return &dirSource{coursesFile: coursesFile, majorsDir: majorsDir}
}

func (s *dirSource) CourseList(ctx context.Context) ([]byte, error) {
	if s.coursesFile == "" {
		return embeddedSource{}.CourseList(ctx)
	}
	data, err := os.ReadFile(s.coursesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read course list %s: %w", s.coursesFile, err)
	}
	return data, nil
}

func (s *dirSource) Definition(_ context.Context, slug string) ([]byte, error) {
	path := filepath.Join(s.majorsDir, slug+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read major definition %s: %w", path, err)
	}
	return data, nil
}
