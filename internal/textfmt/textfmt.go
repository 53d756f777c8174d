// Package textfmt holds the small text normalizations shared by the
// transcript parser and the report renderer.
package textfmt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title upper-cases the first letter of every word and lower-cases the rest.
func Title(s string) string {
	// cases.Caser keeps state between calls, so each call gets its own.
	return cases.Title(language.English).String(s)
}

// CollapseSpaces trims s and replaces every run of whitespace with one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Deslug turns a category or section key such as "core_courses" into a
// display name such as "Core Courses".
func Deslug(key string) string {
	return Title(strings.NewReplacer("_", " ", "-", " ").Replace(key))
}
