// Package judge compiles a submission and runs it against a problem's cases.
package judge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/apperr"
	"github.com/programme-lv/judge/internal/catalog"
	"github.com/programme-lv/judge/internal/cmdtmpl"
	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/internal/proc"
	"github.com/programme-lv/judge/internal/scratch"
	"github.com/programme-lv/judge/pkg/verdict"
)

// Files inside a job's scratch directory.
const (
	ArtifactName = "a.out"
	OutputName   = "output"
)

const (
	DefaultCompileTimeout = 30 * time.Second
	DefaultJudgeTimeout   = 10 * time.Second

	// captured stdout/stderr of auxiliary processes is capped
	captureLimit = 64 * 1024
)

// CaseFiles maps a catalog case file path to a readable plain file.
type CaseFiles interface {
	Resolve(path string) (string, error)
}

type plainFiles struct{}

func (plainFiles) Resolve(path string) (string, error) { return path, nil }

type Engine struct {
	scratch        *scratch.Manager
	files          CaseFiles
	logger         *slog.Logger
	compileTimeout time.Duration
	judgeTimeout   time.Duration
	now            func() time.Time
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithCaseFiles(files CaseFiles) Option {
	return func(e *Engine) { e.files = files }
}

// WithCompileTimeout bounds the compiler. A compiler that runs out of time
// is a compilation error.
func WithCompileTimeout(d time.Duration) Option {
	return func(e *Engine) { e.compileTimeout = d }
}

// WithJudgeTimeout bounds each special judge run.
func WithJudgeTimeout(d time.Duration) Option {
	return func(e *Engine) { e.judgeTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(scratch *scratch.Manager, opts ...Option) *Engine {
	e := &Engine{
		scratch:        scratch,
		files:          plainFiles{},
		logger:         slog.New(slog.DiscardHandler),
		compileTimeout: DefaultCompileTimeout,
		judgeTimeout:   DefaultJudgeTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs rec against prob and returns the aggregate outcome. It never
// fails: every filesystem or process error becomes a SystemError on the
// step where it happened. On return rec is Finished with Updated set.
func (e *Engine) Execute(ctx context.Context, rec *job.Record, prob *catalog.Problem, lang *catalog.Language, gath Gatherer) verdict.Outcome {
	if gath == nil {
		gath = Discard
	}
	log := e.logger.With("job_id", rec.ID, "eval_uuid", rec.Uuid)

	gath.StartJob(rec.ID)
	defer func() {
		rec.State = verdict.StateFinished
		rec.Updated = e.now()
		gath.FinishJob(rec.Outcome, rec.Score)
		log.Info("job finished", "result", rec.Outcome.String(), "score", rec.Score)
	}()

	dir, err := e.scratch.Prepare(rec.ID)
	if err != nil {
		log.Error("failed to prepare scratch dir", "error", err)
		rec.Score = 0
		rec.Cases = nil
		rec.Outcome = verdict.SystemError
		return rec.Outcome
	}
	defer func() {
		if err := dir.Close(); err != nil {
			log.Warn("failed to remove scratch dir", "error", err)
		}
	}()

	rec.Reset(len(prob.Cases))
	rec.State = verdict.StateRunning
	rec.Outcome = verdict.Running

	if !e.compile(ctx, rec, dir, lang, gath, log) {
		rec.Outcome = rec.Cases[0].Outcome
		for i := range prob.Cases {
			gath.IgnoreCase(uint32(i + 1))
		}
		return rec.Outcome
	}
	rec.Outcome = verdict.CompilationSuccess

	allAccepted := true
	for i := range prob.Cases {
		cs := &prob.Cases[i]
		res := &rec.Cases[i+1]

		gath.ReachCase(res.ID)
		data := e.runCase(ctx, dir, prob, cs, res, log)
		gath.FinishCase(res.ID, res.Outcome, res.Info, data)

		if res.Outcome == verdict.Accepted {
			rec.Score += cs.Score
		} else {
			allAccepted = false
		}
		if res.Outcome.Halts() {
			for j := i + 1; j < len(prob.Cases); j++ {
				gath.IgnoreCase(uint32(j + 1))
			}
			rec.Outcome = res.Outcome
			return rec.Outcome
		}
	}

	if allAccepted {
		rec.Outcome = verdict.Accepted
	} else {
		rec.Outcome = verdict.WrongAnswer
	}
	return rec.Outcome
}

func (e *Engine) compile(ctx context.Context, rec *job.Record, dir *scratch.Dir, lang *catalog.Language, gath Gatherer, log *slog.Logger) bool {
	gath.StartCompile()
	res := &rec.Cases[0]

	args := cmdtmpl.Expand(lang.Command, map[string]string{
		cmdtmpl.Input:  dir.Path(lang.FileName),
		cmdtmpl.Output: dir.Path(ArtifactName),
	})

	if err := dir.AddFile(lang.FileName, []byte(rec.Submission.SourceCode)); err != nil {
		log.Error("failed to write source", "error", err)
		res.Outcome = verdict.SystemError
		gath.FinishCompile(res.Outcome, nil)
		return false
	}

	stdout := &capped{limit: captureLimit}
	stderr := &capped{limit: captureLimit}
	run, err := proc.Run(ctx, proc.Spec{
		Args:    args,
		Dir:     dir.Root(),
		Stdout:  stdout,
		Stderr:  stderr,
		Timeout: e.compileTimeout,
	})
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		log.Error("compilation interrupted", "error", err)
		res.Outcome = verdict.SystemError
	case err != nil:
		log.Warn("compiler did not run", "error", err)
		res.Outcome = verdict.CompilationError
	case run.Success():
		res.Outcome = verdict.CompilationSuccess
	case run.TimedOut:
		log.Debug("compiler timed out", "timeout", e.compileTimeout)
		res.Outcome = verdict.CompilationError
	default:
		res.Outcome = verdict.CompilationError
	}

	data := runData(run, stdout.String(), stderr.String())
	if run != nil {
		res.TimeMicros = uint64(run.Wall.Microseconds())
		res.MemoryKiB = uint64(max(run.MaxRssKiB, 0))
	}
	gath.FinishCompile(res.Outcome, data)
	return res.Outcome == verdict.CompilationSuccess
}

func (e *Engine) runCase(ctx context.Context, dir *scratch.Dir, prob *catalog.Problem, cs *catalog.Case, res *job.CaseResult, log *slog.Logger) *api.RunData {
	log = log.With("case_id", res.ID)
	fail := func(msg string, err error) *api.RunData {
		log.Error(msg, "error", err)
		res.Outcome = verdict.SystemError
		return nil
	}

	inPath, err := e.files.Resolve(cs.InputFile)
	if err != nil {
		return fail("failed to resolve input", err)
	}
	in, err := os.Open(inPath)
	if err != nil {
		return fail("failed to open input", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dir.Path(OutputName), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fail("failed to create output", err)
	}
	defer out.Close()

	stderr := &capped{limit: captureLimit}
	run, err := proc.Run(ctx, proc.Spec{
		Args:    []string{dir.Path(ArtifactName)},
		Dir:     dir.Root(),
		Stdin:   in,
		Stdout:  out,
		Stderr:  stderr,
		Timeout: caseTimeout(cs.TimeLimit),
	})
	if err != nil {
		return fail("failed to run submission", err)
	}
	res.TimeMicros = uint64(run.Wall.Microseconds())
	res.MemoryKiB = uint64(max(run.MaxRssKiB, 0))
	data := runData(run, "", stderr.String())

	switch {
	case run.TimedOut:
		res.Outcome = verdict.TimeLimitExceeded
		return data
	case run.ExitCode != 0:
		res.Outcome = verdict.RuntimeError
		return data
	}

	ansPath, err := e.files.Resolve(cs.AnswerFile)
	if err != nil {
		fail("failed to resolve answer", err)
		return data
	}

	if prob.SpecialJudge != nil {
		outcome, info, err := e.specialJudge(ctx, prob.SpecialJudge, dir.Path(OutputName), ansPath)
		if err != nil {
			fail("special judge failed", err)
			return data
		}
		res.Outcome = outcome
		res.Info = info
		return data
	}

	same, err := sameContent(dir.Path(OutputName), ansPath)
	if err != nil {
		fail("failed to compare output", err)
		return data
	}
	if same {
		res.Outcome = verdict.Accepted
	} else {
		res.Outcome = verdict.WrongAnswer
	}
	return data
}

// caseTimeout converts a limit in microseconds. Zero still leaves a
// deadline, so a program that has not exited right away times out.
func caseTimeout(micros uint64) time.Duration {
	if micros > math.MaxInt64/uint64(time.Microsecond) {
		return math.MaxInt64
	}
	return max(time.Duration(micros)*time.Microsecond, time.Nanosecond)
}

// specialJudge runs the checker and reads its verdict: the first line of
// stdout holds the outcome as a JSON string, the second line the info.
func (e *Engine) specialJudge(ctx context.Context, tmpl []string, outPath, ansPath string) (verdict.Outcome, string, error) {
	args := cmdtmpl.Expand(tmpl, map[string]string{
		cmdtmpl.Output: outPath,
		cmdtmpl.Answer: ansPath,
	})
	stdout := &capped{limit: captureLimit}
	run, err := proc.Run(ctx, proc.Spec{
		Args:    args,
		Stdout:  stdout,
		Stderr:  io.Discard,
		Timeout: e.judgeTimeout,
	})
	if err != nil {
		return verdict.SystemError, "", apperr.Wrap(err, apperr.External, "special judge %s", args[0])
	}
	if run.TimedOut {
		return verdict.SystemError, "", apperr.New(apperr.External, "special judge %s timed out after %s", args[0], e.judgeTimeout)
	}
	outcome, info, err := parseJudgeOutput(stdout.String())
	if err != nil {
		return verdict.SystemError, "", apperr.Wrap(err, apperr.External, "special judge %s", args[0])
	}
	return outcome, info, nil
}

func parseJudgeOutput(out string) (verdict.Outcome, string, error) {
	lines := strings.SplitN(out, "\n", 3)
	if len(lines) < 2 {
		return verdict.SystemError, "", fmt.Errorf("expected two lines, got %q", out)
	}
	outcome, err := verdict.DecodeOutcome(lines[0])
	if err != nil {
		return verdict.SystemError, "", err
	}
	switch outcome {
	case verdict.Waiting, verdict.Running, verdict.CompilationError, verdict.CompilationSuccess:
		return verdict.SystemError, "", fmt.Errorf("%q is not a case outcome", outcome.String())
	}
	return outcome, strings.TrimSuffix(lines[1], "\r"), nil
}

func sameContent(a, b string) (bool, error) {
	x, err := os.ReadFile(a)
	if err != nil {
		return false, err
	}
	y, err := os.ReadFile(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(x, y), nil
}

func runData(run *proc.Result, stdout, stderr string) *api.RunData {
	if run == nil {
		return &api.RunData{Stdout: stdout, Stderr: stderr, ExitCode: -1}
	}
	return &api.RunData{
		Stdout:     stdout,
		Stderr:     stderr,
		ExitCode:   run.ExitCode,
		WallMicros: run.Wall.Microseconds(),
		MemKiB:     run.MaxRssKiB,
		TimedOut:   run.TimedOut,
	}
}

// capped keeps the first limit bytes written to it and swallows the rest.
type capped struct {
	buf   bytes.Buffer
	limit int
}

func (c *capped) Write(p []byte) (int, error) {
	if room := c.limit - c.buf.Len(); room > 0 {
		c.buf.Write(p[:min(room, len(p))])
	}
	return len(p), nil
}

func (c *capped) String() string { return c.buf.String() }
