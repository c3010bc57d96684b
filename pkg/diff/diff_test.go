package diff

import (
	"strings"
	"testing"
)

func TestAlpha(t *testing.T) {
	tests := []struct {
		name     string
		obtained string
		expected string
		want     bool
	}{
		{"same", "Hello World", "Hello World", true},
		{"spaces", "Hello World", "H e l l o\nWorld", true},
		{"punctuation and digits", "Hello, World 42!", "HelloWorld", true},
		{"case sensitive", "hello world", "Hello World", false},
		{"different letters", "Hello", "Help", false},
		{"prefix", "Hello", "HelloWorld", false},
		{"empty", "", "", true},
		{"only digits vs empty", "12 34\n", "", true},
		{"crash trace", "Exception in thread main", "Hello", false},
		{"unicode letters", "héllo", "h é l l o", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Alpha(tc.obtained, tc.expected); got != tc.want {
				t.Errorf("Alpha(%q, %q) = %v, want %v", tc.obtained, tc.expected, got, tc.want)
			}
			if got := Alpha(tc.expected, tc.obtained); got != tc.want {
				t.Errorf("Alpha is not symmetric for (%q, %q)", tc.obtained, tc.expected)
			}
		})
	}
}

func TestAlphaWhitespaceInvariant(t *testing.T) {
	base := "The quick brown fox"
	variants := []string{
		"Thequickbrownfox",
		" The  quick\tbrown\n\nfox \n",
		"T h e q u i c k b r o w n f o x",
		"\r\nThe quick\r\nbrown fox\r\n",
	}
	for _, v := range variants {
		if !Alpha(base, v) || !Alpha(v, base) {
			t.Errorf("expected %q to match %q", v, base)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		wantErr  bool
	}{
		{"same", "1 2\n3\n", "1 2\n3\n", false},
		{"trailing spaces", "1 2\n3\n", "1 2   \n3\t\n", false},
		{"trailing lines", "1 2\n3\n", "1 2\n3\n\n\n", false},
		{"missing newline", "1 2\n3\n", "1 2\n3", false},
		{"different", "1 2\n3\n", "1 2\n4\n", true},
		{"leading space", "1 2\n", " 1 2\n", true},
		{"extra content", "1\n", "1\n\n2\n", true},
		{"missing content", "1\n2\n", "1\n", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Compare(strings.NewReader(tc.expected), strings.NewReader(tc.actual))
			if (err != nil) != tc.wantErr {
				t.Fatalf("Compare() error = %v, wantErr %v", err, tc.wantErr)
			}
			if got := Lines(tc.actual, tc.expected); got == tc.wantErr {
				t.Errorf("Lines() = %v, want %v", got, !tc.wantErr)
			}
		})
	}
}

func TestCompareReportsLine(t *testing.T) {
	err := Compare(strings.NewReader("a\nb\nc\n"), strings.NewReader("a\nb\nd\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error %q does not mention line 3", err)
	}
}

func TestTokens(t *testing.T) {
	cmp := Tokens(1e-6)
	tests := []struct {
		obtained string
		expected string
		want     bool
	}{
		{"1 2 3", "1\n2\n3\n", true},
		{"0.3333333", "0.33333333", true},
		{"1000000.5", "1000000.50001", true},
		{"0.5", "0.6", false},
		{"abc 1", "abc 1.0", true},
		{"abc", "abd", false},
		{"1 2", "1 2 3", false},
		{"NaN", "NaN", true},
		{"NaN", "nan", false},
	}
	for _, tc := range tests {
		if got := cmp(tc.obtained, tc.expected); got != tc.want {
			t.Errorf("Tokens(%q, %q) = %v, want %v", tc.obtained, tc.expected, got, tc.want)
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "alpha", "LINES", "exact", "tokens"} {
		if c, err := ByName(name, 0); err != nil || c == nil {
			t.Errorf("ByName(%q) = %v, %v", name, c, err)
		}
	}
	if _, err := ByName("fuzzy", 0); err == nil {
		t.Error("expected error for unknown comparator")
	}
	c, _ := ByName("exact", 0)
	if c("a ", "a") {
		t.Error("exact comparator ignored trailing space")
	}
}
