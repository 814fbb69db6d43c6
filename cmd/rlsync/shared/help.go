package shared

import "strings"

// CLIHelp cleans up an indented raw-string literal so it renders nicely as
// a cobra Long description.
func CLIHelp(text string) string {
	return strings.TrimSpace(dedent(text))
}

// CLIExample cleans up an indented raw-string literal and indents each
// line the way cobra expects Example text to be indented.
func CLIExample(text string) string {
	lines := strings.Split(strings.TrimSpace(dedent(text)), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}

func dedent(text string) string {
	lines := strings.Split(text, "\n")
	margin := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin == -1 || indent < margin {
			margin = indent
		}
	}
	if margin <= 0 {
		return text
	}
	for i, line := range lines {
		if len(line) >= margin {
			lines[i] = line[margin:]
		}
	}
	return strings.Join(lines, "\n")
}
