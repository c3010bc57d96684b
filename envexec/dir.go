package envexec

import (
	"fmt"
	"os"
	"sync"
)

// dirMu guards the process working directory. It is held for the whole
// lifetime of a DirScope.
var dirMu sync.Mutex

// DirScope is an acquired working directory. Close restores the directory
// that was current when the scope was entered.
type DirScope struct {
	dir  string
	prev string

	once sync.Once
	err  error
}

// EnterDir changes the process working directory to dir and returns the scope
// to restore it. Only one scope could be held at a time, a second EnterDir
// blocks until the first scope is closed.
func EnterDir(dir string) (*DirScope, error) {
	dirMu.Lock()
	prev, err := os.Getwd()
	if err != nil {
		dirMu.Unlock()
		return nil, fmt.Errorf("enter dir: get current dir: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		dirMu.Unlock()
		return nil, fmt.Errorf("enter dir: %w", err)
	}
	return &DirScope{dir: dir, prev: prev}, nil
}

// Dir returns the directory entered by the scope
func (s *DirScope) Dir() string {
	return s.dir
}

// Close restores the previous working directory, it is safe to call it
// multiple times
func (s *DirScope) Close() error {
	s.once.Do(func() {
		defer dirMu.Unlock()
		if err := os.Chdir(s.prev); err != nil {
			s.err = fmt.Errorf("restore dir %s: %w", s.prev, err)
		}
	})
	return s.err
}
