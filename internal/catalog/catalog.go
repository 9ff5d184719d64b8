// Package catalog holds the problems and languages the judge serves. The
// catalog is read once at start-up and never changes afterwards.
package catalog

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/judge/internal/cmdtmpl"
)

// Case is one test case of a problem.
type Case struct {
	Score      float64 `toml:"score" json:"score"`
	InputFile  string  `toml:"input_file" json:"input_file"`
	AnswerFile string  `toml:"answer_file" json:"answer_file"`
	// TimeLimit is a wall-clock limit in microseconds. With 0 only a
	// program that exits at once can pass.
	TimeLimit uint64 `toml:"time_limit" json:"time_limit"`
	// MemoryLimit is recorded but not enforced.
	MemoryLimit uint64 `toml:"memory_limit" json:"memory_limit"`
}

type Problem struct {
	ID   uint32
	Name string
	Type string
	// SpecialJudge, when set, replaces byte comparison. It must mention
	// %OUTPUT% and %ANSWER%.
	SpecialJudge []string
	Cases        []Case
}

type Language struct {
	Name     string
	FileName string
	// Command compiles FileName into the runnable artifact. It must
	// mention %INPUT% and %OUTPUT%.
	Command []string
}

type Server struct {
	BindAddress string `toml:"bind_address" json:"bind_address"`
	BindPort    uint16 `toml:"bind_port" json:"bind_port"`
}

// Addr returns host:port, or "" when the server section is absent.
func (s Server) Addr() string {
	if s.BindAddress == "" && s.BindPort == 0 {
		return ""
	}
	host, port := s.BindAddress, s.BindPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == 0 {
		port = 12345
	}
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}

type Catalog struct {
	Server    Server
	Problems  []Problem
	Languages []Language
}

type fileCatalog struct {
	Server    Server         `toml:"server" json:"server"`
	Problems  []fileProblem  `toml:"problems" json:"problems"`
	Languages []fileLanguage `toml:"languages" json:"languages"`
}

type fileProblem struct {
	ID   uint32 `toml:"id" json:"id"`
	Name string `toml:"name" json:"name"`
	Type string `toml:"type" json:"type"`
	Misc struct {
		SpecialJudge any `toml:"special_judge" json:"special_judge"`
	} `toml:"misc" json:"misc"`
	Cases []Case `toml:"cases" json:"cases"`
}

type fileLanguage struct {
	Name     string `toml:"name" json:"name"`
	FileName string `toml:"file_name" json:"file_name"`
	Command  any    `toml:"command" json:"command"`
}

// Load reads a catalog file. Files ending in .json use the JSON layout,
// everything else is TOML. Relative case file paths are resolved against
// the directory of the catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	format := TOML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = JSON
	}
	c, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog dir: %w", err)
	}
	c.resolvePaths(abs)
	return c, nil
}

type Format int

const (
	TOML Format = iota
	JSON
)

// Parse decodes and validates a catalog.
func Parse(data []byte, format Format) (*Catalog, error) {
	var raw fileCatalog
	var err error
	switch format {
	case JSON:
		err = json.Unmarshal(data, &raw)
	default:
		err = toml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}

	c := &Catalog{Server: raw.Server}
	for _, fp := range raw.Problems {
		spj, err := toCommand(fp.Misc.SpecialJudge)
		if err != nil {
			return nil, fmt.Errorf("problem %d special_judge: %w", fp.ID, err)
		}
		c.Problems = append(c.Problems, Problem{
			ID:           fp.ID,
			Name:         fp.Name,
			Type:         fp.Type,
			SpecialJudge: spj,
			Cases:        fp.Cases,
		})
	}
	for _, fl := range raw.Languages {
		cmd, err := toCommand(fl.Command)
		if err != nil {
			return nil, fmt.Errorf("language %q command: %w", fl.Name, err)
		}
		c.Languages = append(c.Languages, Language{
			Name:     fl.Name,
			FileName: fl.FileName,
			Command:  cmd,
		})
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// toCommand accepts either an argument array or a single shell-like string.
func toCommand(v any) ([]string, error) {
	switch cmd := v.(type) {
	case nil:
		return nil, nil
	case string:
		args, err := shlex.Split(cmd)
		if err != nil {
			return nil, fmt.Errorf("failed to split %q: %w", cmd, err)
		}
		return args, nil
	case []any:
		args := make([]string, 0, len(cmd))
		for _, a := range cmd {
			s, ok := a.(string)
			if !ok {
				return nil, fmt.Errorf("argument %v is not a string", a)
			}
			args = append(args, s)
		}
		return args, nil
	default:
		return nil, fmt.Errorf("unsupported command type %T", v)
	}
}

// Validate checks id uniqueness and command placeholders.
func (c *Catalog) Validate() error {
	problems := make(map[uint32]bool, len(c.Problems))
	for _, p := range c.Problems {
		if problems[p.ID] {
			return fmt.Errorf("duplicate problem id %d", p.ID)
		}
		problems[p.ID] = true
		if p.SpecialJudge != nil {
			if len(p.SpecialJudge) == 0 {
				return fmt.Errorf("problem %d: empty special judge", p.ID)
			}
			if m := cmdtmpl.Missing(p.SpecialJudge, cmdtmpl.Output, cmdtmpl.Answer); len(m) > 0 {
				return fmt.Errorf("problem %d: special judge lacks %s", p.ID, strings.Join(m, ", "))
			}
		}
		for i, cs := range p.Cases {
			if cs.InputFile == "" || cs.AnswerFile == "" {
				return fmt.Errorf("problem %d case %d: input_file and answer_file are required", p.ID, i+1)
			}
		}
	}

	languages := make(map[string]bool, len(c.Languages))
	for _, l := range c.Languages {
		if l.Name == "" {
			return fmt.Errorf("language without name")
		}
		if languages[l.Name] {
			return fmt.Errorf("duplicate language %q", l.Name)
		}
		languages[l.Name] = true
		if l.FileName == "" {
			return fmt.Errorf("language %q: file_name is required", l.Name)
		}
		if len(l.Command) == 0 {
			return fmt.Errorf("language %q: empty command", l.Name)
		}
		if m := cmdtmpl.Missing(l.Command, cmdtmpl.Input, cmdtmpl.Output); len(m) > 0 {
			return fmt.Errorf("language %q: command lacks %s", l.Name, strings.Join(m, ", "))
		}
	}
	return nil
}

func (c *Catalog) resolvePaths(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range c.Problems {
		for j := range c.Problems[i].Cases {
			cs := &c.Problems[i].Cases[j]
			cs.InputFile = abs(cs.InputFile)
			cs.AnswerFile = abs(cs.AnswerFile)
		}
	}
}

func (c *Catalog) Problem(id uint32) (*Problem, bool) {
	for i := range c.Problems {
		if c.Problems[i].ID == id {
			return &c.Problems[i], true
		}
	}
	return nil, false
}

func (c *Catalog) Language(name string) (*Language, bool) {
	for i := range c.Languages {
		if c.Languages[i].Name == name {
			return &c.Languages[i], true
		}
	}
	return nil, false
}

// ProblemIDs lists problem ids in catalog order.
func (c *Catalog) ProblemIDs() []uint32 {
	ids := make([]uint32, len(c.Problems))
	for i, p := range c.Problems {
		ids[i] = p.ID
	}
	return ids
}

// CaseFiles lists every input and answer file the catalog references.
func (c *Catalog) CaseFiles() []string {
	var files []string
	for _, p := range c.Problems {
		for _, cs := range p.Cases {
			files = append(files, cs.InputFile, cs.AnswerFile)
		}
	}
	return files
}
