package staging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSlug(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Python is not a great language", "Python_is_not_a_great_language"},
		{"a/b\\c:d", "a_b_c_d"},
		{"  spaced   out  ", "spaced_out"},
		{"---", "untitled"},
		{"", "untitled"},
		{"résumé review", "r_sum_review"},
	}

	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Fatalf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewCreatesLayout(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "pages")
	d, err := New(root)
	if err != nil {
		t.Fatalf("new staging: %v", err)
	}

	for _, dir := range []string{d.HTML(), d.Markdown(), d.JSON()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestPurgeRemovesAllFiles(t *testing.T) {
	t.Parallel()

	d, err := New(filepath.Join(t.TempDir(), "pages"))
	if err != nil {
		t.Fatalf("new staging: %v", err)
	}

	files := []string{
		filepath.Join(d.HTML(), "a.html"),
		filepath.Join(d.Markdown(), "a.md"),
		filepath.Join(d.JSON(), "a.json"),
	}
	for _, f := range files {
		if err := os.WriteFile(f, []byte("x"), 0o640); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}

	removed, err := d.Purge()
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}

	for _, f := range files {
		if _, err := os.Stat(f); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed", f)
		}
	}
}
