// Package judgetest builds small catalogs backed by /bin/sh for tests.
package judgetest

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/programme-lv/judge/internal/catalog"
	"github.com/programme-lv/judge/internal/judge"
	"github.com/programme-lv/judge/internal/scratch"
)

// Languages. Shell "compiles" by copying the script and marking it
// executable, Broken always fails, Slow never finishes.
const (
	Shell  = "Shell"
	Broken = "Broken"
	Slow   = "Slow"
)

// Problem ids.
const (
	AplusB     uint32 = 0 // two cases worth 50
	Halting    uint32 = 1 // second of three cases loops under AplusBSource
	Crashing   uint32 = 2 // second of three cases exits 7 under AplusBSource
	Checked    uint32 = 3 // two cases judged by a cmp based special judge
	Garbled    uint32 = 4 // special judge prints nonsense
	WrongFirst uint32 = 5 // first answer file is wrong
)

// AplusBSource sums two numbers. Input "loop" spins forever and "crash"
// exits with status 7.
const AplusBSource = `#!/bin/sh
read a b
if [ "$a" = loop ]; then while :; do :; done; fi
if [ "$a" = crash ]; then exit 7; fi
echo $((a+b))
`

// DiffSource prints the difference instead of the sum.
const DiffSource = `#!/bin/sh
read a b
echo $((a-b))
`

type fixture struct {
	t   testing.TB
	dir string
}

func (f fixture) file(name, content string) string {
	f.t.Helper()
	path := filepath.Join(f.dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		f.t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func (f fixture) cases(prefix string, limit uint64, scores []float64, files ...string) []catalog.Case {
	var res []catalog.Case
	for i := 0; i+1 < len(files); i += 2 {
		n := i / 2
		res = append(res, catalog.Case{
			Score:      scores[n],
			InputFile:  f.file(prefix+strconv.Itoa(n+1)+".in", files[i]),
			AnswerFile: f.file(prefix+strconv.Itoa(n+1)+".ans", files[i+1]),
			TimeLimit:  limit,
		})
	}
	return res
}

// Catalog writes the case files into a temp dir and returns a catalog
// referencing them.
func Catalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	f := fixture{t: t, dir: t.TempDir()}
	const second = 1_000_000

	checker := []string{"/bin/sh", "-c",
		`if cmp -s "$0" "$1"; then printf '"Accepted"\nidentical\n'; else printf '"Wrong Answer"\ndiffers\n'; fi`,
		"%OUTPUT%", "%ANSWER%"}
	garbled := []string{"/bin/sh", "-c", `echo "$0 $1" >/dev/null; echo garbage`, "%OUTPUT%", "%ANSWER%"}

	return &catalog.Catalog{
		Languages: []catalog.Language{
			{Name: Shell, FileName: "main.sh", Command: []string{"/bin/sh", "-c", `cp "$0" "$1" && chmod +x "$1"`, "%INPUT%", "%OUTPUT%"}},
			{Name: Broken, FileName: "main.sh", Command: []string{"/bin/sh", "-c", `echo "cannot compile $0" >&2; exit 1`, "%INPUT%", "%OUTPUT%"}},
			{Name: Slow, FileName: "main.sh", Command: []string{"/bin/sh", "-c", `sleep 10`, "%INPUT%", "%OUTPUT%"}},
		},
		Problems: []catalog.Problem{
			{ID: AplusB, Name: "aplusb", Type: "standard",
				Cases: f.cases("aplusb", second, []float64{50, 50}, "1 2\n", "3\n", "10 20\n", "30\n")},
			{ID: Halting, Name: "halting", Type: "standard",
				Cases: f.cases("halting", 300_000, []float64{30, 30, 40}, "1 1\n", "2\n", "loop 0\n", "0\n", "2 2\n", "4\n")},
			{ID: Crashing, Name: "crashing", Type: "standard",
				Cases: f.cases("crashing", second, []float64{30, 30, 40}, "1 1\n", "2\n", "crash 0\n", "0\n", "2 2\n", "4\n")},
			{ID: Checked, Name: "checked", Type: "spj", SpecialJudge: checker,
				Cases: f.cases("checked", second, []float64{50, 50}, "1 2\n", "3\n", "2 2\n", "5\n")},
			{ID: Garbled, Name: "garbled", Type: "spj", SpecialJudge: garbled,
				Cases: f.cases("garbled", second, []float64{50, 50}, "1 2\n", "3\n", "2 2\n", "4\n")},
			{ID: WrongFirst, Name: "wrongfirst", Type: "standard",
				Cases: f.cases("wrongfirst", second, []float64{50, 50}, "1 2\n", "4\n", "2 2\n", "4\n")},
		},
	}
}

// Engine returns an engine with its scratch root in a temp dir.
func Engine(t testing.TB, opts ...judge.Option) *judge.Engine {
	t.Helper()
	return judge.NewEngine(scratch.New(t.TempDir()), opts...)
}
