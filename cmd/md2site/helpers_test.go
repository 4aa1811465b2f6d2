package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var fixedNow = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

// testEnv returns an Environment writing to buffers. No .env file is read
// and every command is found on PATH unless missing lists it.
func testEnv(missing ...string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdout: &stdout,
		Stderr: &stderr,
		LookPath: func(file string) (string, error) {
			for _, m := range missing {
				if m == file {
					return "", errors.New("executable file not found in $PATH")
				}
			}
			return "/usr/bin/" + file, nil
		},
	}
	return env, &stdout, &stderr
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func post(slug, published, body string) string {
	h := "---\ntitle: Post " + slug + "\nslug: " + slug + "\ntags: [go]\nsummary: About " + slug + ".\n"
	if published != "" {
		h += "published: \"" + published + "\"\n"
	}
	return h + "---\n" + body
}

// siteFixture lays out posts/ and assets/ under a temp dir and returns the
// root.
func siteFixture(t *testing.T, posts map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range posts {
		writeFile(t, filepath.Join(root, "posts", name), content)
	}
	writeFile(t, filepath.Join(root, "assets", "img", "logo.svg"), "<svg/>")
	writeFile(t, filepath.Join(root, "assets", "README.md"), "# not copied")
	return root
}

// buildArgs returns the build arguments for a fixture rooted at root.
func buildArgs(root string, extra ...string) []string {
	args := []string{
		filepath.Join(root, "posts"),
		"--assets", filepath.Join(root, "assets"),
		"-o", filepath.Join(root, "out"),
	}
	return append(args, extra...)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
