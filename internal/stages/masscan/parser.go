// Package masscan runs the fast port scan and parses masscan's grepable
// (-oG) output.
package masscan

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"reconpipe/internal/platform/validator"
)

const portsMarker = "Ports:"

// ParseGrepable returns the distinct open ports reported for host, sorted.
// A line counts only when it has a "Ports:" section and host appears as a
// whole token, so 10.0.0.1 never matches 10.0.0.10. Malformed lines and
// ports above 65535 are skipped.
//
//	Timestamp: 1672531200	Host: 10.0.0.1 ()	Ports: 80/open/tcp//http//
func ParseGrepable(r io.Reader, host string) []int {
	seen := make(map[int]struct{})

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		idx := strings.Index(line, portsMarker)
		if idx < 0 || !containsToken(line[:idx], host) {
			continue
		}

		for _, p := range openPorts(line[idx+len(portsMarker):]) {
			seen[p] = struct{}{}
		}
	}

	ports := make([]int, 0, len(seen))
	for p := range seen {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports
}

// ParseGrepableFile parses path. A missing or unreadable file yields no ports.
func ParseGrepableFile(path, host string) []int {
	f, err := os.Open(path)
	if err != nil {
		return []int{}
	}
	defer f.Close()
	return ParseGrepable(f, host)
}

// containsToken busca host delimitado por espacios, tabs o paréntesis.
func containsToken(s, host string) bool {
	if host == "" {
		return false
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '(' || r == ')'
	})
	for _, f := range fields {
		if f == host {
			return true
		}
	}
	return false
}

// openPorts extrae los puertos "open" de una sección de ports. Cada entrada
// es port/state/proto/... y varias entradas se separan por comas.
func openPorts(section string) []int {
	var out []int
	for _, entry := range strings.Split(section, ",") {
		entry = strings.TrimSpace(entry)
		if sp := strings.IndexAny(entry, " \t"); sp >= 0 {
			entry = entry[:sp]
		}
		parts := strings.Split(entry, "/")
		if len(parts) < 3 || parts[1] != "open" {
			continue
		}
		port, err := strconv.Atoi(parts[0])
		if err != nil || !validator.IsPort(port) {
			continue
		}
		out = append(out, port)
	}
	return out
}
