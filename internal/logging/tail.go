package logging

import (
	"bufio"
	"os"
	"strings"

	apperrors "github.com/lifelog-api/lifelog/internal/errors"
)

// DefaultTailLimit is the number of log lines returned when the caller does
// not specify a limit.
const DefaultTailLimit = 100

// Tail reads the log file at path newest-first, keeps only lines containing
// levelFilter (case-insensitive, skipped when blank) and stops once limit
// lines are collected. A missing file is reported as a not-found AppError so
// the handler can answer 404 rather than 500.
func Tail(path, levelFilter string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultTailLimit
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound("log file not found", err)
		}
		return nil, apperrors.Internal("failed to retrieve logs", err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, apperrors.Internal("failed to retrieve logs", err)
	}

	filter := strings.ToLower(strings.TrimSpace(levelFilter))
	out := make([]string, 0, limit)
	for i := len(lines) - 1; i >= 0 && len(out) < limit; i-- {
		if filter != "" && !strings.Contains(strings.ToLower(lines[i]), filter) {
			continue
		}
		out = append(out, lines[i])
	}
	return out, nil
}
