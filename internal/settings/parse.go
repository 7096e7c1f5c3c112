package settings

import (
	"fmt"
	"strconv"
	"strings"
)

// parseIntPrefix parses a base-10 integer from the longest valid prefix of s.
// "3" and "3abc" both parse to 3; a string with no leading integer fails.
// The prefix leniency matches the historical behavior of the settings wire
// format and is relied on by saved settings in the wild.
func parseIntPrefix(s string) (int, error) {
	t := strings.TrimSpace(s)
	i := 0
	if i < len(t) && (t[i] == '+' || t[i] == '-') {
		i++
	}
	j := i
	for j < len(t) && t[j] >= '0' && t[j] <= '9' {
		j++
	}
	if j == i {
		return 0, fmt.Errorf("could not parse %q as an integer", s)
	}
	v, err := strconv.Atoi(t[:j])
	if err != nil {
		return 0, fmt.Errorf("could not parse %q as an integer: %w", s, err)
	}
	return v, nil
}

// parseFloatPrefix parses a float from the longest valid prefix of s, with
// the same leniency as parseIntPrefix ("3.5axis" parses to 3.5).
func parseFloatPrefix(s string) (float64, error) {
	t := strings.TrimSpace(s)
	for end := len(t); end > 0; end-- {
		if v, err := strconv.ParseFloat(t[:end], 64); err == nil {
			return v, nil
		}
	}
	return 0, fmt.Errorf("could not parse %q as a number", s)
}

// parseBool accepts only the literal strings "true" and "false".
func parseBool(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("could not parse %q as a boolean, expected \"true\" or \"false\"", s)
}

func formatInt(v int) string { return strconv.Itoa(v) }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// anyToRaw converts a plain settings-tree value to its wire string form.
// JSON decoding produces string, bool and float64; programmatic trees may
// also carry int values.
func anyToRaw(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return formatBool(t), nil
	case float64:
		return formatFloat(t), nil
	case int:
		return formatInt(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	default:
		return "", fmt.Errorf("unsupported settings value of type %T", v)
	}
}
