package lists

import (
	"bufio"
	"io"
	"strings"
)

// List file formats understood by ParserForFormat.
const (
	FormatDomainList = "domainlist"
	FormatHostfile   = "hostfile"
)

// Parser extracts entries from a list file.
type Parser interface {
	Parse(r io.Reader) ([]string, error)
}

// HostfileParser parses hosts-file format: "0.0.0.0 domain" or "127.0.0.1 domain".
type HostfileParser struct{}

// Parse returns the unique, lowercased host names of r in file order.
func (p *HostfileParser) Parse(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	var entries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := stripComment(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		// a single address line may list several aliases
		for _, host := range fields[1:] {
			host = strings.ToLower(host)
			if isLocalHost(host) {
				continue
			}
			if _, ok := seen[host]; ok {
				continue
			}
			seen[host] = struct{}{}
			entries = append(entries, host)
		}
	}

	return entries, scanner.Err()
}

// LineParser parses one-entry-per-line files. It serves both domain lists
// and whitelist files made of URLs.
type LineParser struct{}

// Parse returns the unique, trimmed lines of r in file order.
func (p *LineParser) Parse(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	var entries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		entries = append(entries, line)
	}

	return entries, scanner.Err()
}

// ParserForFormat returns the parser for a list format name. Unknown names
// fall back to one entry per line.
func ParserForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case FormatHostfile:
		return &HostfileParser{}
	default:
		return &LineParser{}
	}
}

func stripComment(line string) string {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "#") {
		return ""
	}
	// inline comments need a preceding space so URL fragments survive
	if idx := strings.Index(line, " #"); idx >= 0 {
		line = line[:idx]
	}

	return strings.TrimSpace(line)
}

func isLocalHost(host string) bool {
	switch host {
	case "localhost", "localhost.localdomain", "broadcasthost", "local", "0.0.0.0":
		return true
	}

	return false
}
