package status

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// TailLines is how many trailing log lines are classified.
const TailLines = 400

type logRule struct {
	match func(text string) bool
	kind  Kind
}

func contains(subs ...string) func(string) bool {
	return func(text string) bool {
		for _, s := range subs {
			if strings.Contains(text, s) {
				return true
			}
		}
		return false
	}
}

// logRules are evaluated top-down; the first match wins.
var logRules = []logRule{
	{match: contains("error"), kind: KindError},
	{match: func(text string) bool {
		return strings.Contains(text, "loading model") && !strings.Contains(text, "idle")
	}, kind: KindLoading},
	{match: contains("idle"), kind: KindReady},
	{match: contains("listening", "http server"), kind: KindReachable},
}

// ClassifyLog applies the log rules to lines. ok is false when no rule matches.
func ClassifyLog(lines []string) (sig Signal, ok bool) {
	text := strings.ToLower(strings.Join(lines, "\n"))
	for _, rule := range logRules {
		if rule.match(text) {
			return Signal{Kind: rule.kind, Source: FromLog}, true
		}
	}
	return Signal{}, false
}

// ReadLog classifies the last TailLines lines of the file at path. A missing
// or unreadable file yields no signal.
func ReadLog(path string) (Signal, bool) {
	file, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("cannot open inference server log", "path", path, "error", err)
		}
		return Signal{}, false
	}
	defer func() {
		_ = file.Close()
	}()

	lines, err := tail(file, TailLines)
	if err != nil {
		slog.Debug("cannot read inference server log", "path", path, "error", err)
		return Signal{}, false
	}
	return ClassifyLog(lines)
}

// tail returns the last n lines of r, keeping at most n lines in memory.
func tail(r io.Reader, n int) ([]string, error) {
	ring := make([]string, 0, n)
	next := 0
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\r\n")
			if len(ring) < n {
				ring = append(ring, line)
			} else {
				ring[next] = line
				next = (next + 1) % n
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(ring) < n {
		return ring, nil
	}
	return append(ring[next:], ring[:next]...), nil
}
