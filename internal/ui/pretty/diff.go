package pretty

import "strings"

// FormatDiff colors a unified diff line by line. Text without styles passes
// through unchanged.
func (s *Styles) FormatDiff(diff string) string {
	if diff == "" {
		return ""
	}
	lines := strings.SplitAfter(diff, "\n")
	var builder strings.Builder
	for _, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		if body == "" {
			builder.WriteString(line)
			continue
		}
		switch {
		case strings.HasPrefix(body, "--- "), strings.HasPrefix(body, "+++ "):
			builder.WriteString(s.DiffHeader.Render(body))
		case strings.HasPrefix(body, "@@"):
			builder.WriteString(s.DiffHunk.Render(body))
		case body[0] == '+':
			builder.WriteString(s.DiffAdd.Render(body))
		case body[0] == '-':
			builder.WriteString(s.DiffRemove.Render(body))
		default:
			builder.WriteString(s.DiffContext.Render(body))
		}
		if len(body) < len(line) {
			builder.WriteByte('\n')
		}
	}
	return builder.String()
}
