package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileLocalStore(t *testing.T) {
	dir := t.TempDir()
	s := NewFileLocalStore(dir)

	id, err := s.Add("../../student/submission.TAR.GZ", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if !strings.HasSuffix(id, ".tar.gz") {
		t.Errorf("id = %s, want archive extension", id)
	}

	name, p, ok := s.Get(id)
	if !ok {
		t.Fatal("Get() not found")
	}
	if name != "submission.TAR.GZ" {
		t.Errorf("name = %s", name)
	}
	if filepath.Dir(p) != dir {
		t.Errorf("path = %s, want in %s", p, dir)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "content" {
		t.Errorf("content = %q, %v", b, err)
	}

	other, err := s.Add("notes.txt", strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if other == id || strings.Contains(other, ".") {
		t.Errorf("second id = %s", other)
	}
	if l := s.List(); len(l) != 2 || l[id] != "submission.TAR.GZ" {
		t.Errorf("List() = %v", l)
	}

	if !s.Remove(id) {
		t.Error("Remove() = false")
	}
	if s.Remove(id) {
		t.Error("Remove() twice = true")
	}
	if _, _, ok := s.Get(id); ok {
		t.Error("Get() found removed file")
	}
	for _, bad := range []string{"", "..", "../x", "a/b"} {
		if _, _, ok := s.Get(bad); ok {
			t.Errorf("Get(%q) found", bad)
		}
	}
}
