// Package termgath prints execution progress for a human watching a terminal.
package termgath

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/pkg/verdict"
)

type TerminalGatherer struct {
	w         io.Writer
	now       func() time.Time
	startedAt time.Time
	// short outcome per case, printed as a one line summary at the end
	cases []string

	good *color.Color
	bad  *color.Color
	dim  *color.Color
}

// New writes to w. Colors follow color.NoColor, which is set when w is not
// a terminal.
func New(w io.Writer) *TerminalGatherer {
	return &TerminalGatherer{
		w:    w,
		now:  time.Now,
		good: color.New(color.FgGreen, color.Bold),
		bad:  color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
}

func (t *TerminalGatherer) StartJob(jobID uint32) {
	t.startedAt = t.now()
	t.cases = t.cases[:0]
	fmt.Fprintf(t.w, "== Job %d started ==\n", jobID)
}

func (t *TerminalGatherer) StartCompile() {
	fmt.Fprintln(t.w, "-- Compilation started --")
}

func (t *TerminalGatherer) FinishCompile(res verdict.Outcome, data *api.RunData) {
	fmt.Fprintf(t.w, "-- Compilation finished: %s --\n", t.paint(res))
	t.runData("  ", data)
}

func (t *TerminalGatherer) ReachCase(caseID uint32) {
	t.dim.Fprintf(t.w, "-> Case %d reached\n", caseID)
}

func (t *TerminalGatherer) FinishCase(caseID uint32, res verdict.Outcome, info string, data *api.RunData) {
	fmt.Fprintf(t.w, "<- Case %d: %s\n", caseID, t.paint(res))
	t.cases = append(t.cases, res.Short())
	if info != "" {
		fmt.Fprintf(t.w, "  info: %s\n", info)
	}
	t.runData("  ", data)
}

func (t *TerminalGatherer) IgnoreCase(caseID uint32) {
	t.dim.Fprintf(t.w, "-> Case %d ignored\n", caseID)
	t.cases = append(t.cases, verdict.Skipped.Short())
}

func (t *TerminalGatherer) FinishJob(res verdict.Outcome, score float64) {
	dur := t.now().Sub(t.startedAt).Round(time.Millisecond)
	if len(t.cases) > 0 {
		fmt.Fprintf(t.w, "   cases: %s\n", strings.Join(t.cases, " "))
	}
	fmt.Fprintf(t.w, "== %s, score %g, finished in %s ==\n", t.paint(res), score, dur)
}

func (t *TerminalGatherer) paint(res verdict.Outcome) string {
	switch res {
	case verdict.Accepted, verdict.CompilationSuccess:
		return t.good.Sprint(res)
	case verdict.Waiting, verdict.Running, verdict.Skipped:
		return t.dim.Sprint(res)
	default:
		return t.bad.Sprint(res)
	}
}

func (t *TerminalGatherer) runData(indent string, data *api.RunData) {
	if data == nil {
		return
	}
	fmt.Fprintf(t.w, "%sexit=%d wall=%dms mem=%dKiB\n", indent, data.ExitCode, data.WallMicros/1000, data.MemKiB)
	if data.TimedOut {
		fmt.Fprintf(t.w, "%stimed out\n", indent)
	}
	if s := strings.TrimRight(data.Stderr, "\n"); s != "" {
		fmt.Fprintf(t.w, "%sstderr:\n%s\n", indent, api.TrimToRect(s, api.MaxRunDataHeight, api.MaxRunDataWidth))
	}
}
