package language

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"
)

// Profile defines how to find, compile and run programs of one language.
//
// Compile and Run are command templates split by shell word rules. The
// placeholders {src}, {name} and {dir} are replaced by the entry file name,
// the entry file name without extension and the entry directory.
type Profile struct {
	Name          string   `yaml:"name"`
	SourcePattern string   `yaml:"sourcePattern"` // e.g. *.java
	EntryFile     string   `yaml:"entryFile"`     // e.g. Main.java
	Compile       string   `yaml:"compile"`       // empty for interpreted languages
	Run           string   `yaml:"run"`
	Env           []string `yaml:"env"`
}

// Limits defines clock time limits of compile and run, zero means unbounded
type Limits struct {
	CompileTimeLimit time.Duration
	RunTimeLimit     time.Duration
}

// Built-in profiles
var (
	Java = Profile{
		Name:          "java",
		SourcePattern: "*.java",
		EntryFile:     "Main.java",
		Compile:       "javac {src}",
		Run:           "java {name}",
	}
	Python = Profile{
		Name:          "python",
		SourcePattern: "*.py",
		EntryFile:     "main.py",
		Compile:       "python3 -m py_compile {src}",
		Run:           "python3 {src}",
	}
	C = Profile{
		Name:          "c",
		SourcePattern: "*.c",
		EntryFile:     "main.c",
		Compile:       "gcc -O2 -o main {src} -lm",
		Run:           "./main",
	}
	CPP = Profile{
		Name:          "cpp",
		SourcePattern: "*.cpp",
		EntryFile:     "main.cpp",
		Compile:       "g++ -O2 -o main {src}",
		Run:           "./main",
	}
)

// BuiltinProfiles returns the profiles registered by default
func BuiltinProfiles() []Profile {
	return []Profile{Java, Python, C, CPP}
}

// Check verifies the profile is complete and its templates are parsable
func (p Profile) Check() error {
	if p.Name == "" {
		return errors.New("profile: name is required")
	}
	if p.SourcePattern == "" {
		return fmt.Errorf("profile %s: source pattern is required", p.Name)
	}
	if p.EntryFile == "" {
		return fmt.Errorf("profile %s: entry file is required", p.Name)
	}
	ok, err := filepath.Match(p.SourcePattern, p.EntryFile)
	if err != nil {
		return fmt.Errorf("profile %s: source pattern: %w", p.Name, err)
	}
	if !ok {
		return fmt.Errorf("profile %s: entry file %s does not match %s", p.Name, p.EntryFile, p.SourcePattern)
	}
	if strings.TrimSpace(p.Run) == "" {
		return fmt.Errorf("profile %s: run command is required", p.Name)
	}
	for _, tpl := range []string{p.Compile, p.Run} {
		if _, err := shlex.Split(tpl); err != nil {
			return fmt.Errorf("profile %s: parse command %q: %w", p.Name, tpl, err)
		}
	}
	return nil
}

// Factory returns the Factory creating command handlers of the profile
func (p Profile) Factory(limits Limits) Factory {
	return func(workDir string) Handler {
		return NewCommandHandler(workDir, p, limits)
	}
}

// expandCommand splits the template and replaces the placeholders in every field
func expandCommand(tpl, entry string) ([]string, error) {
	fields, err := shlex.Split(tpl)
	if err != nil {
		return nil, fmt.Errorf("parse command template: %w", err)
	}
	if len(fields) == 0 {
		return nil, errors.New("command is empty")
	}
	src := filepath.Base(entry)
	r := strings.NewReplacer(
		"{src}", src,
		"{name}", strings.TrimSuffix(src, filepath.Ext(src)),
		"{dir}", filepath.Dir(entry),
	)
	for i, f := range fields {
		fields[i] = r.Replace(f)
	}
	return fields, nil
}
