package output

import (
	"regexp"
	"strings"
)

// ChatDialect distinguishes target chat surfaces whose markdown support
// differs (spec §4.5: tables become bullet lists "when the chat has no
// native table support").
type ChatDialect string

const (
	DialectSlackMrkdwn ChatDialect = "slack-mrkdwn"
	DialectPlainText   ChatDialect = "plain-text"
)

var (
	headingPattern   = regexp.MustCompile(`(?m)^#{1,6}\s*(.+)$`)
	boldPattern      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	linkPattern      = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	tableRowPattern  = regexp.MustCompile(`(?m)^\|(.+)\|\s*$`)
	tableDividerLine = regexp.MustCompile(`^\s*\|?[\s:|-]+\|?\s*$`)
)

// ToChatFormat is layer 2: it rewrites common markdown constructs
// (headings, bold, links, tables) into the target chat dialect's native
// formatting.
func ToChatFormat(text string, dialect ChatDialect) string {
	text = convertTables(text, dialect)
	text = headingPattern.ReplaceAllString(text, "*$1*")
	switch dialect {
	case DialectSlackMrkdwn:
		text = boldPattern.ReplaceAllString(text, "*$1*")
		text = linkPattern.ReplaceAllString(text, "<$2|$1>")
	default:
		text = boldPattern.ReplaceAllString(text, "$1")
		text = linkPattern.ReplaceAllString(text, "$1 ($2)")
	}
	return text
}

// convertTables turns a markdown table into a bulleted list when the target
// dialect has no native table support; Slack mrkdwn is treated the same way
// since it also lacks table rendering in message bodies.
func convertTables(text string, _ ChatDialect) string {
	lines := strings.Split(text, "\n")
	var out []string
	var header []string
	inTable := false

	flushAsBullets := func() {
		if header == nil {
			return
		}
		header, inTable = nil, false
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !tableRowPattern.MatchString(line) {
			if inTable {
				flushAsBullets()
			}
			out = append(out, line)
			continue
		}
		cells := splitTableRow(line)
		if !inTable {
			header = cells
			inTable = true
			continue
		}
		if tableDividerLine.MatchString(line) {
			continue
		}
		out = append(out, renderTableRowAsBullet(header, cells))
	}
	flushAsBullets()
	return strings.Join(out, "\n")
}

func splitTableRow(line string) []string {
	trimmed := strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(trimmed, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func renderTableRowAsBullet(header, cells []string) string {
	var b strings.Builder
	b.WriteString("- ")
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(", ")
		}
		if i < len(header) && header[i] != "" {
			b.WriteString(header[i])
			b.WriteString(": ")
		}
		b.WriteString(cell)
	}
	return b.String()
}
