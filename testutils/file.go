package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

// WriteLines writes lines, newline terminated, to a file called name in a fresh temporary
// directory and returns its path.
func WriteLines(tb testing.TB, name string, lines ...string) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	test.That(tb, os.WriteFile(path, []byte(sb.String()), 0o600), test.ShouldBeNil)
	return path
}

// ReadLines returns the non-empty lines of the file at path.
func ReadLines(tb testing.TB, path string) []string {
	tb.Helper()
	//nolint:gosec
	data, err := os.ReadFile(path)
	test.That(tb, err, test.ShouldBeNil)
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
