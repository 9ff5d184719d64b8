package api

import "strings"

// RunData describes one finished process: the compiler, the submission on a
// case, or the special judge.
type RunData struct {
	Stdout   string `json:"out"`
	Stderr   string `json:"err"`
	ExitCode int    `json:"exit"`

	WallMicros int64 `json:"wall_us"`
	MemKiB     int64 `json:"mem_kib"`
	TimedOut   bool  `json:"timed_out"`
}

// Runtime data size constraints for streaming
const (
	MaxRunDataHeight = 40
	MaxRunDataWidth  = 80
)

// Trimmed returns a copy whose output fits into the streaming rectangle.
func (d *RunData) Trimmed() *RunData {
	if d == nil {
		return nil
	}
	c := *d
	c.Stdout = TrimToRect(d.Stdout, MaxRunDataHeight, MaxRunDataWidth)
	c.Stderr = TrimToRect(d.Stderr, MaxRunDataHeight, MaxRunDataWidth)
	return &c
}

// TrimToRect keeps at most maxHeight lines of at most maxWidth bytes each,
// marking every cut with "[...]".
func TrimToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > maxHeight {
		lines = append(lines[:maxHeight:maxHeight], "[...]")
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if len(line) > maxWidth {
			b.WriteString(line[:maxWidth])
			b.WriteString("[...]")
		} else {
			b.WriteString(line)
		}
	}
	return b.String()
}
