// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-site/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Check is the outcome of validating one file.
type Check struct {
	Path string
	Err  error
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintResumeManifest lists the résumé variants in manifest order.
func (p *Printer) PrintResumeManifest(m *types.ResumeManifest) {
	if m.Len() == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Version:  %s\n", m.Version))
	if !m.Generated.IsZero() {
		sb.WriteString(fmt.Sprintf("Generated: %s\n", m.Generated.Format("2006-01-02 15:04")))
	}
	sb.WriteString(fmt.Sprintf("Total:    %d\n\n", m.Len()))

	entries := m.Entries()
	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := entries[i]
		sb.WriteString(fmt.Sprintf("• %s\n", types.TitleCase(e.Name)))
		sb.WriteString(fmt.Sprintf("  %s", e.Entry.JSONFile))
		if e.Entry.HasPNGPhoto {
			sb.WriteString(" [photo]")
		}
		sb.WriteString("\n")
	}
	if len(entries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(entries)-maxItemsToShow))
	}

	p.printBox("RESUME MANIFEST", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintThemeManifest lists the themes in manifest order.
func (p *Printer) PrintThemeManifest(m *types.ThemeManifest) {
	if m.Len() == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total:    %d", m.Len()))
	if m.Legacy {
		sb.WriteString(" (migrated from legacy list)")
	}
	sb.WriteString("\n\n")

	entries := m.Entries()
	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("• %-16s %s\n", entries[i].Key, entries[i].Entry.FilePath))
	}
	if len(entries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(entries)-maxItemsToShow))
	}

	p.printBox("THEME MANIFEST", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResume outputs a short summary of a résumé document.
func (p *Printer) PrintResume(path string, r *types.ResumeData) {
	if r.IsEmpty() {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", r.Personal.Name))
	if r.Personal.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:    %s\n", r.Personal.Title))
	}
	sb.WriteString("\n")

	cats := r.SkillCategories()
	if len(cats) > 0 {
		sb.WriteString("Skills:\n")
		for _, c := range cats {
			sb.WriteString(fmt.Sprintf("  • %s (%d)\n", types.TitleCase(c.Key), len(c.Skills)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Experience: %d  Education: %d  Projects: %d",
		len(r.Experience), len(r.Education), len(r.Projects)))

	p.printBox("RESUME "+path, sb.String())
}

// PrintChecks outputs validation results, one line per file.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintChecks(checks []Check) {
	failed := 0
	var sb strings.Builder
	for i, c := range checks {
		if c.Err == nil {
			sb.WriteString(fmt.Sprintf("✓ %s", c.Path))
		} else {
			failed++
			sb.WriteString(fmt.Sprintf("⚠ %s\n", c.Path))
			for _, line := range strings.Split(strings.TrimSpace(c.Err.Error()), "\n") {
				sb.WriteString(fmt.Sprintf("  %s\n", strings.TrimSpace(line)))
			}
		}
		if i < len(checks)-1 && c.Err == nil {
			sb.WriteString("\n")
		}
	}

	title := fmt.Sprintf("✅ %d FILES VALID", len(checks))
	if failed > 0 {
		title = fmt.Sprintf("VALIDATION: %d OF %d FILES FAILED", failed, len(checks))
	}
	if len(checks) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO FILES CHECKED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFiles lists files written by a command.
func (p *Printer) PrintFiles(title string, files []string) {
	if len(files) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(files), maxItemsToShow*2)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("• %s\n", files[i]))
	}
	if len(files) > count {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(files)-count))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}
