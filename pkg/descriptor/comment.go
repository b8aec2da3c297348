package descriptor

import (
	"strings"
)

// ParseDoc converts a /** ... */ comment into a Doc. Recognized tags
// (@since, @experimental, @deprecated) become flags and leave the text; a tag
// continues onto following lines until a blank line or the next tag. Every
// other line, including unknown tags, is kept verbatim.
func ParseDoc(comment string) Doc {
	lines := commentLines(comment)

	var doc Doc
	var text []string
	var note *string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		tag, rest := splitTag(trimmed)
		switch tag {
		case "@since":
			doc.Since = rest
			note = nil
			continue
		case "@experimental":
			doc.Experimental = true
			doc.ExperimentalNote = rest
			note = &doc.ExperimentalNote
			continue
		case "@deprecated":
			doc.Deprecated = true
			doc.DeprecatedNote = rest
			note = &doc.DeprecatedNote
			continue
		case "@namespace":
			doc.Namespace = rest
		}
		if note != nil {
			if trimmed != "" && tag == "" {
				if *note == "" {
					*note = trimmed
				} else {
					*note += " " + trimmed
				}
				continue
			}
			note = nil
		}
		text = append(text, line)
	}

	doc.Text = strings.Join(trimBlank(text), "\n")
	return doc
}

// commentLines strips the comment delimiters and the leading "*" gutter.
func commentLines(comment string) []string {
	body := strings.TrimSpace(comment)
	body = strings.TrimPrefix(body, "/**")
	body = strings.TrimPrefix(body, "/*")
	body = strings.TrimSuffix(body, "*/")

	raw := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		l := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(l, "*") {
			l = strings.TrimPrefix(l, "*")
			l = strings.TrimPrefix(l, " ")
		} else if len(lines) == 0 {
			l = strings.TrimLeft(l, " ")
		}
		lines = append(lines, strings.TrimRight(l, " \t"))
	}
	return lines
}

func splitTag(line string) (tag, rest string) {
	if !strings.HasPrefix(line, "@") {
		return "", ""
	}
	name, rest, _ := strings.Cut(line, " ")
	return name, strings.TrimSpace(rest)
}

func trimBlank(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
