package lists

import (
	"fmt"
	"os"
)

// LoadWhitelist reads a whitelist file with one URL per line. An empty path
// yields an empty whitelist.
func LoadWhitelist(path string) (*Whitelist, error) {
	entries, err := readEntries(path, &LineParser{})
	if err != nil {
		return nil, fmt.Errorf("could not load whitelist: %w", err)
	}

	return NewWhitelist(entries), nil
}

// LoadBlocklist reads a blocklist file in the given format (see
// ParserForFormat). An empty path yields an empty blocklist.
func LoadBlocklist(path, format string) (*Blocklist, error) {
	entries, err := readEntries(path, ParserForFormat(format))
	if err != nil {
		return nil, fmt.Errorf("could not load blocklist: %w", err)
	}

	return NewBlocklist(entries), nil
}

func readEntries(path string, parser Parser) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	entries, err := parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}

	return entries, nil
}
