package fsops

import (
	"errors"
	"os"
	"strings"
)

// ListDir lists non-recursive entries of dir, newline-joined, directories
// suffixed with "/". Entry order is whatever the filesystem enumeration
// yields. A missing directory is an expected condition and comes back as the
// literal "Directory not found"; any other failure propagates as an error.
func ListDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return "Directory not found", nil
	}
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return strings.Join(names, "\n"), nil
}
