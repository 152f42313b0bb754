package util

import (
	"regexp"
	"strings"
)

var dashCaseRegexp = regexp.MustCompile(`-+([a-z0-9])`)

// DashCaseToCamelCase converts a dash-case string to camelCase
func DashCaseToCamelCase(input string) string {
	return dashCaseRegexp.ReplaceAllStringFunc(input, func(match string) string {
		parts := dashCaseRegexp.FindStringSubmatch(match)
		if len(parts) > 1 {
			return strings.ToUpper(parts[1])
		}
		return match
	})
}

// SplitAtColon splits a string at the colon character
func SplitAtColon(input string, defaultValues []string) []string {
	return splitAt(input, ':', defaultValues)
}

func splitAt(input string, character rune, defaultValues []string) []string {
	index := strings.IndexRune(input, character)
	if index == -1 {
		return defaultValues
	}
	return []string{
		strings.TrimSpace(input[:index]),
		strings.TrimSpace(input[index+1:]),
	}
}

// NameList is one entry of a comma separated `local:external` list.
type NameList struct {
	Local    string
	External string
	Offset   int
}

// SplitNameList parses `a, b:c` into entries. Offsets are relative to input.
func SplitNameList(input string) []NameList {
	var out []NameList
	start := 0
	for start <= len(input) {
		end := strings.IndexByte(input[start:], ',')
		if end < 0 {
			end = len(input)
		} else {
			end += start
		}
		raw := input[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			offset := start + strings.Index(raw, trimmed)
			parts := SplitAtColon(trimmed, []string{trimmed, trimmed})
			out = append(out, NameList{Local: parts[0], External: parts[1], Offset: offset})
		}
		start = end + 1
	}
	return out
}

var nonWordRe = regexp.MustCompile(`\W`)

// SanitizeIdentifier sanitizes an identifier name by replacing non-word characters with underscores
func SanitizeIdentifier(name string) string {
	return nonWordRe.ReplaceAllString(name, "_")
}

// PascalCase turns a file or tag name like `todo-item` into `TodoItem`.
func PascalCase(name string) string {
	dashed := nonWordRe.ReplaceAllString(strings.ReplaceAll(name, "_", "-"), "-")
	camel := strings.ReplaceAll(DashCaseToCamelCase(strings.ToLower(dashed)), "-", "")
	if camel == "" {
		return "Component"
	}
	if camel[0] >= '0' && camel[0] <= '9' {
		camel = "C" + camel
	}
	return strings.ToUpper(camel[:1]) + camel[1:]
}
