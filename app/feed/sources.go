package feed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadSources reads feed URLs from a plain-text file, one per line. Blank
// lines and lines starting with '#' are ignored; order is preserved.
func LoadSources(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed source list: %w", err)
	}
	defer f.Close()

	sources, err := ReadSources(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed source list %s: %w", path, err)
	}
	return sources, nil
}

func ReadSources(r io.Reader) ([]string, error) {
	var sources []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		sources = append(sources, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return sources, nil
}
