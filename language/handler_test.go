//go:build unix

package language

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "test.in")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func compiledHandler(t *testing.T, p Profile, limits Limits, script string) *CommandHandler {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"sub/main.sh": script})
	h := NewCommandHandler(dir, p, limits)
	if _, err := h.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	status, err := h.Compile(context.Background())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if status != 0 {
		t.Fatalf("Compile() status = %d", status)
	}
	return h
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		entry   string
		wantErr error
	}{
		{
			name:    "empty",
			files:   map[string]string{"readme.txt": "hi"},
			wantErr: ErrNoEntryPoint,
		},
		{
			name:    "no entry file",
			files:   map[string]string{"other.sh": "echo"},
			wantErr: ErrNoEntryPoint,
		},
		{
			name:  "single",
			files: map[string]string{"a/b/main.sh": "echo", "a/util.sh": "true"},
			entry: "a/b/main.sh",
		},
		{
			name:    "multiple",
			files:   map[string]string{"a/main.sh": "echo", "b/main.sh": "echo"},
			wantErr: ErrMultipleEntryPoints,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tc.files)
			h := NewCommandHandler(dir, shell, Limits{})
			entry, err := h.Validate()
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Validate() error = %v, want %v", err, tc.wantErr)
				}
				if h.Entry() != "" {
					t.Errorf("entry set on failure: %s", h.Entry())
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
			if want := filepath.Join(dir, filepath.FromSlash(tc.entry)); entry != want {
				t.Errorf("Validate() = %s, want %s", entry, want)
			}
		})
	}
}

func TestValidateMultipleListsPaths(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a/main.sh": "", "b/main.sh": ""})
	_, err := NewCommandHandler(dir, shell, Limits{}).Validate()
	if err == nil || !strings.Contains(err.Error(), "a/main.sh") || !strings.Contains(err.Error(), "b/main.sh") {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestContract(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"main.sh": "echo hi"})
	h := NewCommandHandler(dir, shell, Limits{})

	_, err := h.Compile(context.Background())
	var ce *ContractError
	if !errors.As(err, &ce) || !errors.Is(err, ErrContractViolation) {
		t.Fatalf("Compile() before Validate() error = %v", err)
	}
	if _, err := h.Validate(); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Evaluate(context.Background(), writeInput(t, "")); !errors.Is(err, ErrContractViolation) {
		t.Fatalf("Evaluate() before Compile() error = %v", err)
	}
}

func TestCompileFailure(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"main.sh": "if then fi (\n"})
	h := NewCommandHandler(dir, shell, Limits{})
	if _, err := h.Validate(); err != nil {
		t.Fatal(err)
	}
	status, err := h.Compile(context.Background())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if status == 0 {
		t.Fatal("Compile() status = 0, want non-zero")
	}
	log, err := os.ReadFile(filepath.Join(dir, CompileLogName))
	if err != nil {
		t.Fatal(err)
	}
	if len(log) == 0 {
		t.Error("compile log is empty")
	}
	if _, err := h.Evaluate(context.Background(), writeInput(t, "")); !errors.Is(err, ErrContractViolation) {
		t.Fatalf("Evaluate() after failed compile error = %v", err)
	}
}

func TestCompileWithoutCommand(t *testing.T) {
	p := shell
	p.Compile = ""
	h := compiledHandler(t, p, Limits{}, "echo ok")
	if _, err := os.Stat(h.CompileLogPath()); err != nil {
		t.Errorf("compile log missing: %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		script string
		input  string
		want   []string
	}{
		{name: "echo", script: "cat", input: "hello world\n", want: []string{"hello world\n"}},
		{name: "crash", script: "echo partial\necho oops >&2\nexit 3", want: []string{"partial", "oops"}},
		{name: "working dir", script: "ls", want: []string{"main.sh", CompileLogName}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := compiledHandler(t, shell, Limits{}, tc.script)
			out, err := h.Evaluate(context.Background(), writeInput(t, tc.input))
			if err != nil {
				t.Fatalf("Evaluate() error: %v", err)
			}
			for _, w := range tc.want {
				if !strings.Contains(out, w) {
					t.Errorf("Evaluate() = %q, want containing %q", out, w)
				}
			}
			log, err := os.ReadFile(h.EvalLogPath())
			if err != nil {
				t.Fatal(err)
			}
			if string(log) != out {
				t.Errorf("eval log = %q, want %q", log, out)
			}
		})
	}
}

func TestEvaluateIndependent(t *testing.T) {
	h := compiledHandler(t, shell, Limits{}, "cat")
	first, err := h.Evaluate(context.Background(), writeInput(t, "a rather long first input\n"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := h.Evaluate(context.Background(), writeInput(t, "b\n"))
	if err != nil {
		t.Fatal(err)
	}
	if first != "a rather long first input\n" || second != "b\n" {
		t.Errorf("Evaluate() = %q, %q", first, second)
	}
}

func TestEvaluateRestoresDir(t *testing.T) {
	before, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	p := shell
	p.Run = "definitely-not-a-command-xyz {src}"
	h := compiledHandler(t, p, Limits{}, "echo")
	out, err := h.Evaluate(context.Background(), writeInput(t, ""))
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if !strings.Contains(out, "definitely-not-a-command-xyz") {
		t.Errorf("Evaluate() = %q, want launch failure reason", out)
	}
	after, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Errorf("working dir = %s, want %s", after, before)
	}
}

func TestEvaluateTimeLimit(t *testing.T) {
	h := compiledHandler(t, shell, Limits{RunTimeLimit: 200 * time.Millisecond}, "echo started\nsleep 10")
	start := time.Now()
	out, err := h.Evaluate(context.Background(), writeInput(t, ""))
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Errorf("Evaluate() took %v", d)
	}
	if !strings.HasPrefix(out, "started\n") || !strings.Contains(out, "killed after") {
		t.Errorf("Evaluate() = %q", out)
	}
}

func TestEvaluateMissingInput(t *testing.T) {
	h := compiledHandler(t, shell, Limits{}, "cat")
	if _, err := h.Evaluate(context.Background(), filepath.Join(t.TempDir(), "missing.in")); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestExpandCommand(t *testing.T) {
	entry := filepath.Join("/tmp", "sub", "Main.java")
	tests := []struct {
		tpl  string
		want []string
	}{
		{"javac {src}", []string{"javac", "Main.java"}},
		{"java -cp {dir} {name}", []string{"java", "-cp", filepath.Dir(entry), "Main"}},
		{`sh -c "echo {name}"`, []string{"sh", "-c", "echo Main"}},
	}
	for _, tc := range tests {
		got, err := expandCommand(tc.tpl, entry)
		if err != nil {
			t.Fatalf("expandCommand(%q) error: %v", tc.tpl, err)
		}
		if strings.Join(got, "|") != strings.Join(tc.want, "|") {
			t.Errorf("expandCommand(%q) = %q, want %q", tc.tpl, got, tc.want)
		}
	}
	if _, err := expandCommand("  ", entry); err == nil {
		t.Error("expected error for empty command")
	}
}
