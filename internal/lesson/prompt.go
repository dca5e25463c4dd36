// Package lesson turns curriculum sheet rows into generated wiki pages: one
// prompt per row, one generation call, one page upsert.
package lesson

import (
	"fmt"
	"strings"

	"github.com/mkranz/sheetsync/internal/tabular"
)

// Row is a curriculum record with the sheet's columns mapped to stable field
// names.
type Row struct {
	Module         string
	ModuleName     string
	Section        string
	SectionTitle   string
	SubLessons     string
	Examples       string
	ConfluenceLink string
	YouTubeLink    string
}

// FromRecord maps sheet headers to Row fields. The "External Links" column
// holds a Confluence reference and "Zoom Links" holds a video link; the sheet
// predates the current column meanings.
func FromRecord(rec tabular.Record) Row {
	return Row{
		Module:         strings.TrimSpace(rec.Get("Module")),
		ModuleName:     strings.TrimSpace(rec.Get("Module Name")),
		Section:        strings.TrimSpace(rec.Get("Section")),
		SectionTitle:   strings.TrimSpace(rec.Get("Section Title")),
		SubLessons:     strings.TrimSpace(rec.Get("Sub-lessons")),
		Examples:       strings.TrimSpace(rec.Get("Examples")),
		ConfluenceLink: strings.TrimSpace(rec.Get("External Links")),
		YouTubeLink:    strings.TrimSpace(rec.Get("Zoom Links")),
	}
}

// Complete reports whether the row carries the fields a lesson page needs.
// Rows without a section or section title are skipped, not errors.
func (r Row) Complete() bool {
	return r.Section != "" && r.SectionTitle != ""
}

// Title derives the page title, e.g. "1.1 – Personnel Identification".
func (r Row) Title() string {
	return strings.TrimSpace(fmt.Sprintf("%s.%s – %s", r.Module, r.Section, r.SectionTitle))
}

// systemInstruction opens every prompt; the rest of the prompt embeds the
// row's fields and the fixed page structure.
const systemInstruction = "You are generating Confluence lesson pages for an internal American Football curriculum for gameplay engineers."

// BuildPrompt renders the full generation prompt for one row.
func BuildPrompt(r Row) string {
	var b strings.Builder
	b.WriteString(systemInstruction)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, `Generate a Confluence lesson page for this topic. Use Confluence storage/markup-style headings and lists.
Do NOT include backticks or code fences.

Module: %s
Module Name: %s
Section: %s
Section Title: %s
Sub-lessons: %s
Examples: %s
Confluence Reference: %s
YouTube Reference: %s

Page structure:
- h1: "%s"
- h2: Learning Objectives (3-5 bullets)
- h2: Key Concepts (expand each sub-lesson as h3 with explanation)
- h2: Teaching Flow (bulleted steps using the links if provided)
- h2: Example Scenarios (2-3 football situations)
- h2: Quiz (5 questions)

Again, output ONLY the Confluence markup.`,
		r.Module, r.ModuleName, r.Section, r.SectionTitle,
		r.SubLessons, r.Examples, r.ConfluenceLink, r.YouTubeLink,
		r.Title(),
	)

	return b.String()
}
