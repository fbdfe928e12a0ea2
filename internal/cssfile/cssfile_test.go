package cssfile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.css", true},
		{"/home/test/test.css", true},
		{"relative/dir/style.css", true},
		{".css", true},
		{"", false},
		{"/test/test.txt", false},
		{"a.cssx", false},
		{"a.css.bak", false},
		{"style.css ", false},
		{"acss", false},
		{"a.CSS", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Validate(tt.path); got != tt.want {
				t.Errorf("Validate(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		outDir string
		input  string
		want   string
	}{
		{"dist", "src/site.css", filepath.Join("dist", "site.css")},
		{"dist/css", "/abs/path/main.css", filepath.Join("dist", "css", "main.css")},
		{"out", "plain.css", filepath.Join("out", "plain.css")},
	}

	for _, tt := range tests {
		if got := OutputPath(tt.outDir, tt.input); got != tt.want {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", tt.outDir, tt.input, got, tt.want)
		}
	}
}

// createTree creates the given files (with empty content) under a temp dir.
func createTree(t *testing.T, files []string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("a{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestFindStylesheets(t *testing.T) {
	root := createTree(t, []string{
		"a.css",
		"b.css",
		"notes.txt",
		"vendor.min.css",
		"sub/c.css",
		"sub/deeper/d.css",
		".hidden/e.css",
		"node_modules/pkg/f.css",
	})

	tests := []struct {
		name      string
		recursive bool
		want      []string
	}{
		{
			name: "top level only",
			want: []string{"a.css", "b.css"},
		},
		{
			name:      "recursive",
			recursive: true,
			want:      []string{"a.css", "b.css", "sub/c.css", "sub/deeper/d.css"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindStylesheets(root, tt.recursive)
			if err != nil {
				t.Fatalf("FindStylesheets() error = %v", err)
			}
			want := make([]string, len(tt.want))
			for i, name := range tt.want {
				want[i] = filepath.Join(root, filepath.FromSlash(name))
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("FindStylesheets() = %v, want %v", got, want)
			}
		})
	}
}

func TestFindStylesheets_Errors(t *testing.T) {
	root := createTree(t, []string{"a.css"})

	if _, err := FindStylesheets(filepath.Join(root, "missing"), false); err == nil {
		t.Error("FindStylesheets() on missing dir: expected error")
	}
	if _, err := FindStylesheets(filepath.Join(root, "a.css"), false); err != errNotDirectory {
		t.Errorf("FindStylesheets() on file: error = %v, want %v", err, errNotDirectory)
	}
}

func TestFindStylesheets_Empty(t *testing.T) {
	root := t.TempDir()
	got, err := FindStylesheets(root, true)
	if err != nil {
		t.Fatalf("FindStylesheets() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("FindStylesheets() = %v, want none", got)
	}
}
