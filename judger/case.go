package judger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Case defines a single test case
type Case struct {
	Index    int
	Input    string
	Expected string
}

// Name returns the identifier of the case in the report
func (c Case) Name() string {
	return "test" + strconv.Itoa(c.Index)
}

// ErrNoCase is returned when no test case is declared
var ErrNoCase = errors.New("no test case found")

// Discover declares cases by the test<i>.in / test<i>.out convention in dir,
// numbered from 0. If count > 0 exactly count cases are declared, otherwise
// discovery stops at the first missing input.
func Discover(dir string, count int) ([]Case, error) {
	var cases []Case
	for i := 0; count <= 0 || i < count; i++ {
		c := Case{
			Index:    i,
			Input:    filepath.Join(dir, fmt.Sprintf("test%d.in", i)),
			Expected: filepath.Join(dir, fmt.Sprintf("test%d.out", i)),
		}
		if _, err := os.Stat(c.Input); err != nil {
			if count <= 0 && errors.Is(err, fs.ErrNotExist) {
				break
			}
			return nil, fmt.Errorf("%s input: %w", c.Name(), err)
		}
		if _, err := os.Stat(c.Expected); err != nil {
			return nil, fmt.Errorf("%s expected output: %w", c.Name(), err)
		}
		cases = append(cases, c)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCase, dir)
	}
	return cases, nil
}

// Manifest defines the test case manifest file
type Manifest struct {
	Cases []ManifestCase `yaml:"cases"`
}

// ManifestCase is a case in the manifest, paths are relative to the manifest
type ManifestCase struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// LoadManifest declares cases from the YAML manifest in listed order
func LoadManifest(p string) ([]Case, error) {
	d, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(d, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", p, err)
	}
	if len(m.Cases) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCase, p)
	}

	base := filepath.Dir(p)
	resolve := func(f string) string {
		if filepath.IsAbs(f) {
			return f
		}
		return filepath.Join(base, f)
	}
	cases := make([]Case, 0, len(m.Cases))
	for i, mc := range m.Cases {
		if mc.Input == "" || mc.Output == "" {
			return nil, fmt.Errorf("manifest %s: case %d: input and output are required", p, i)
		}
		cases = append(cases, Case{
			Index:    i,
			Input:    resolve(mc.Input),
			Expected: resolve(mc.Output),
		})
	}
	return cases, nil
}
