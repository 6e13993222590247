// Package extract recovers JSON and plain text from free-form model output.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonFence     = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")
	anyFence      = regexp.MustCompile("(?s)```(.*?)```")
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("(?i)\\s*```$")
)

// JSON attempts to recover a JSON value from text. Strategies are tried in
// order and the first that parses wins:
//
//  1. the whole string;
//  2. the interior of a ```json fenced block, else of any ``` fenced block;
//  3. the span from the first '{' to the last '}' inclusive.
//
// A JSON null, false, 0 or "" is treated as not found. Braces are not balanced, so prose
// containing stray braces around the object can defeat step 3.
func JSON(text string) (any, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	if v, ok := parse(text); ok {
		return v, true
	}

	if m := jsonFence.FindStringSubmatch(text); m != nil {
		if v, ok := parse(m[1]); ok {
			return v, true
		}
	} else if m := anyFence.FindStringSubmatch(text); m != nil {
		if v, ok := parse(m[1]); ok {
			return v, true
		}
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first != -1 && last > first {
		if v, ok := parse(text[first : last+1]); ok {
			return v, true
		}
	}

	return nil, false
}

// StripFences removes a leading ``` or ```json marker and a trailing ```
// marker, then trims surrounding whitespace. It repeats until the text no
// longer changes, so StripFences(StripFences(s)) == StripFences(s).
func StripFences(text string) string {
	out := strings.TrimSpace(text)
	for {
		next := leadingFence.ReplaceAllString(out, "")
		next = trailingFence.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == out {
			return out
		}
		out = next
	}
}

func parse(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	switch v {
	case nil, false, float64(0), "":
		return nil, false
	}
	return v, true
}
