package behave

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/judge/internal/job"
	"github.com/programme-lv/judge/pkg/verdict"
)

// SpecExpect describes the expected job result. Unset fields are not checked.
type SpecExpect struct {
	Result *verdict.Outcome  `toml:"result"`
	Score  *float64          `toml:"score"`
	Cases  []verdict.Outcome `toml:"cases"`
}

// specScenario maps to [[scenarios]] entries. The source is given inline or
// as a file relative to the behaviour file.
type specScenario struct {
	Description string     `toml:"description"`
	UserID      uint32     `toml:"user_id"`
	ContestID   uint32     `toml:"contest_id"`
	ProblemID   uint32     `toml:"problem_id"`
	Language    string     `toml:"language"`
	Source      string     `toml:"source"`
	SourceFile  string     `toml:"source_file"`
	Expect      SpecExpect `toml:"expect"`
}

type specRoot struct {
	// Catalog is resolved against the behaviour file's directory.
	Catalog   string         `toml:"catalog"`
	Scenarios []specScenario `toml:"scenarios"`
}

// Case is a runnable scenario converted from TOML
type Case struct {
	Name       string
	Uuid       string
	Submission job.Submission
	Expect     SpecExpect
}

// Suite is a parsed behaviour file. CatalogPath is empty when the file does
// not name a catalog.
type Suite struct {
	CatalogPath string
	Cases       []Case
}

// Parse reads a behaviour TOML file and converts it to runnable cases
func Parse(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read behaviour file: %w", err)
	}
	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	dir := filepath.Dir(path)
	suite := &Suite{Cases: make([]Case, 0, len(root.Scenarios))}
	if root.Catalog != "" {
		suite.CatalogPath = relativeTo(dir, root.Catalog)
	}

	for i, sc := range root.Scenarios {
		if sc.Language == "" {
			return nil, fmt.Errorf("scenario %d: language is required", i+1)
		}
		source := sc.Source
		switch {
		case sc.Source != "" && sc.SourceFile != "":
			return nil, fmt.Errorf("scenario %d: source and source_file are exclusive", i+1)
		case sc.SourceFile != "":
			b, err := os.ReadFile(relativeTo(dir, sc.SourceFile))
			if err != nil {
				return nil, fmt.Errorf("scenario %d: %w", i+1, err)
			}
			source = string(b)
		case sc.Source == "":
			return nil, fmt.Errorf("scenario %d: source is required", i+1)
		}

		c := Case{
			Name: sc.Description,
			Uuid: uuid.NewString(),
			Submission: job.Submission{
				SourceCode: source,
				Language:   sc.Language,
				UserID:     sc.UserID,
				ContestID:  sc.ContestID,
				ProblemID:  sc.ProblemID,
			},
			Expect: sc.Expect,
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("scenario %d", i+1)
		}
		suite.Cases = append(suite.Cases, c)
	}
	return suite, nil
}

func relativeTo(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
