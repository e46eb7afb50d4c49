// internal/store/jsonl.go
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/taxdrill/backend/internal/domain/run"
)

// FileLog stores attempts as one JSON record per line, in files partitioned
// by calendar month (attempts_YYYYMM.jsonl). There is a single writer — the
// active session — so append-at-end is the only discipline needed.
type FileLog struct {
	dir string
	mu  sync.Mutex
}

// NewFileLog creates the log directory if needed.
func NewFileLog(dir string) (*FileLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attempts dir: %w", err)
	}
	return &FileLog{dir: dir}, nil
}

func (l *FileLog) pathForMonth(ts time.Time) string {
	return filepath.Join(l.dir, "attempts_"+ts.UTC().Format("200601")+".jsonl")
}

// AppendAttempt writes the attempt to its month's partition.
func (l *FileLog) AppendAttempt(a run.Attempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.pathForMonth(a.Timestamp), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open attempt log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(a); err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

// LoadAttempts reads every partition in order. Blank and malformed lines are
// skipped — a torn write must not poison the whole history.
func (l *FileLog) LoadAttempts() ([]run.Attempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(l.dir, "attempts_*.jsonl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var attempts []run.Attempt
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			line := sc.Bytes()
			if len(line) == 0 {
				continue
			}
			var a run.Attempt
			if err := json.Unmarshal(line, &a); err != nil {
				continue
			}
			attempts = append(attempts, a)
		}
		scanErr := sc.Err()
		f.Close()
		if scanErr != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(p), scanErr)
		}
	}
	return attempts, nil
}

func (l *FileLog) Close() error { return nil }
