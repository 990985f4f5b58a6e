// Package ingestion turns uploaded writing samples into clean plain text.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	runOfSpaces  = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	excessBlanks = regexp.MustCompile(`\n{3,}`)
	markdownRule = regexp.MustCompile(`^([-*_]\s*){3,}$`)
	markdownLink = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	markdownMark = regexp.MustCompile(`(\*\*|__|~~|` + "`" + `)`)
)

// CleanText normalizes line endings and whitespace while keeping paragraph
// breaks, headings and list items on their own lines.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u2028", "\n")
	content = strings.ReplaceAll(content, "\ufeff", "")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := excessBlanks.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine collapses interior whitespace. Leading indentation is dropped;
// paragraph structure lives in blank lines, not indentation.
func cleanLine(line string) string {
	return strings.TrimSpace(runOfSpaces.ReplaceAllString(line, " "))
}

// StripMarkdown removes markup that would otherwise be counted as
// punctuation: heading hashes, emphasis markers, link targets and rules.
// List markers are kept since they carry structure.
func StripMarkdown(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if markdownRule.MatchString(trimmed) && !isBulletLine(trimmed) {
			out = append(out, "")
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			trimmed = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
		trimmed = strings.TrimPrefix(trimmed, "> ")
		trimmed = markdownLink.ReplaceAllString(trimmed, "$1")
		trimmed = markdownMark.ReplaceAllString(trimmed, "")
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}

// isBulletLine reports whether a line is a list item.
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}
