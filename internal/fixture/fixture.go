// Package fixture holds the canned lesson set served when demo mode is on.
package fixture

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"
)

//go:embed demo.json
var demoJSON []byte

// Kind selects which supplement Supplement returns.
type Kind string

const (
	KindExpansion Kind = "expansion"
	KindHint      Kind = "hint"
)

// lesson is the subset of a demo lesson that supplements read.
type lesson struct {
	Tip          string   `json:"tip"`
	PracticeTask string   `json:"practice_task"`
	Hints        []string `json:"hints"`
	FullGuide    string   `json:"full_guide"`
}

var demoLessons = mustLessons()

func mustLessons() []lesson {
	var doc struct {
		MicroLessons []lesson `json:"micro_lessons"`
	}
	if err := json.Unmarshal(demoJSON, &doc); err != nil {
		panic("fixture: decode demo.json: " + err.Error())
	}
	if len(doc.MicroLessons) == 0 {
		panic("fixture: demo.json has no lessons")
	}
	return doc.MicroLessons
}

// JSON returns a copy of the canned document.
func JSON() []byte {
	return bytes.Clone(demoJSON)
}

// Value decodes the canned document into a fresh generic value, so callers
// may modify the result freely.
func Value() map[string]any {
	var v map[string]any
	if err := json.Unmarshal(demoJSON, &v); err != nil {
		panic("fixture: decode demo.json: " + err.Error())
	}
	return v
}

// Count is the number of canned lessons.
func Count() int {
	return len(demoLessons)
}

// Supplement returns the canned full guide or hint for the lesson at index.
// The index is clamped into the valid range. A lesson without a canned hint
// gets one built from its tip and practice task.
func Supplement(index int, kind Kind) string {
	l := demoLessons[clamp(index, 0, len(demoLessons)-1)]

	if kind == KindHint {
		if len(l.Hints) > 0 && strings.TrimSpace(l.Hints[0]) != "" {
			return l.Hints[0]
		}
		return fallbackHint(l)
	}
	return l.FullGuide
}

func fallbackHint(l lesson) string {
	var parts []string
	if tip := strings.TrimSpace(l.Tip); tip != "" {
		parts = append(parts, "Focus on: "+strings.TrimRight(tip, "."))
	}
	if task := strings.TrimSpace(l.PracticeTask); task != "" {
		parts = append(parts, "Try: "+task)
	}
	return strings.Join(parts, ". ")
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
