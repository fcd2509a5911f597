package batch

import (
	"fmt"
	"strings"
)

// Level is the category tag attached to a scan.
type Level string

// Known levels. LevelUnselected is the picker placeholder and never ends up in a batch.
const (
	LevelUnselected Level = "Select Level"
	LevelFirst      Level = "First"
	LevelSecond     Level = "Second"
	LevelThird      Level = "Third"
)

var levels = []Level{LevelFirst, LevelSecond, LevelThird}

// Levels returns the selectable levels in display order.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// Valid reports whether l is one of the selectable levels.
func (l Level) Valid() bool {
	for _, v := range levels {
		if l == v {
			return true
		}
	}
	return false
}

func (l Level) String() string {
	return string(l)
}

// ParseLevel matches s against the selectable levels, ignoring case and surrounding space.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	for _, v := range levels {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return LevelUnselected, fmt.Errorf("unknown level %q", s)
}
