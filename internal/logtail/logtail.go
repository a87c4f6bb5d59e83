package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Severity is a glog severity level.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

var severityNames = []string{"INFO", "WARNING", "ERROR", "FATAL"}

// String returns the name glog uses in file names.
func (s Severity) String() string {
	if s < Info || s > Fatal {
		return "INFO"
	}
	return severityNames[s]
}

// ParseSeverity accepts a glog level name or its first letter, in any case.
// Empty input means Info.
func ParseSeverity(raw string) (Severity, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return Info, nil
	}
	for i, name := range severityNames {
		if raw == name || raw == name[:1] || (name == "WARNING" && raw == "WARN") {
			return Severity(i), nil
		}
	}
	return Info, fmt.Errorf("unknown log level %q", raw)
}

// Latest returns the newest glog file for program at severity sev. glog
// keeps a "<program>.<SEVERITY>" symlink to it; when that is missing the
// newest matching file in dir wins.
func Latest(dir, program string, sev Severity) (string, error) {
	link := filepath.Join(dir, program+"."+sev.String())
	if target, err := filepath.EvalSymlinks(link); err == nil {
		return target, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, program+".*.log."+sev.String()+".*"))
	if err != nil {
		return "", fmt.Errorf("find logs: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no %s logs for %s in %s: %w", sev, program, dir, os.ErrNotExist)
	}
	// glog names end in yyyymmdd-hhmmss.pid, so name order is time order
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// Read returns at most maxLines log lines from the end of the file at path.
// glog's file header is skipped. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, next := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if isHeader(line) {
			continue
		}
		ring[next] = line
		next = (next + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, 0, count)
	start := 0
	if count == maxLines {
		start = next
	}
	for i := 0; i < count; i++ {
		lines = append(lines, ring[(start+i)%maxLines])
	}
	return lines, nil
}

// Tail reads the last maxLines lines of program's newest log at sev.
func Tail(dir, program string, sev Severity, maxLines int) ([]string, error) {
	path, err := Latest(dir, program, sev)
	if err != nil {
		return nil, err
	}
	return Read(path, maxLines)
}

var headerPrefixes = []string{
	"Log file created at:",
	"Running on machine:",
	"Binary: ",
	"Log line format:",
}

func isHeader(line string) bool {
	for _, p := range headerPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
