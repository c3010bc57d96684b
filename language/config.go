package language

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
)

// Profiles defines the language configuration file
type Profiles struct {
	Languages []Profile `yaml:"languages"`
}

// LoadProfiles reads the language configuration file. A missing file is not
// an error and returns no profile.
func LoadProfiles(p string) ([]Profile, error) {
	d, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c Profiles
	if err := yaml.Unmarshal(d, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	for _, l := range c.Languages {
		if err := l.Check(); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return c.Languages, nil
}
