// Package golden compares test output with recorded golden files.
package golden

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Compare compares the lines of got with the golden file at path. If
// update is set, the golden file is rewritten instead.
func Compare(path string, update bool, got []byte) error {
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		return os.WriteFile(path, got, 0o640)
	}
	want, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	gl, wl := lines(got), lines(want)
	mismatches := 0
	first := -1
	for i, n := 0, min(len(gl), len(wl)); i < n; i++ {
		if gl[i] != wl[i] {
			if first == -1 {
				first = i
			}
			mismatches++
		}
	}
	if len(gl) != len(wl) {
		return fmt.Errorf("%s: %d lines, golden has %d", path, len(gl), len(wl))
	}
	if mismatches > 0 {
		return fmt.Errorf("%s: %d mismatched lines, first at line %d: %q, golden %q",
			path, mismatches, first+1, gl[first], wl[first])
	}
	return nil
}

func lines(b []byte) []string {
	var l []string
	s := bufio.NewScanner(bytes.NewReader(b))
	for s.Scan() {
		l = append(l, s.Text())
	}
	return l
}
