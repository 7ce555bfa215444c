// Package journal is the append-only activity log behind the status view.
//
// Entries are kept in memory in insertion order and mirrored to a file with
// one JSON object per line. The in-memory sequence is authoritative: a failed
// disk write never drops an entry from the running process.
package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"contentbot/types"
)

// maxLineSize bounds a single persisted entry when loading
const maxLineSize = 1 << 20

// Journal holds the activity log with thread-safe access
type Journal struct {
	mu      sync.RWMutex
	path    string
	entries []types.LogEntry
	now     func() time.Time
	echo    bool
}

// Option configures a Journal
type Option func(*Journal)

// WithClock overrides the time source used to stamp and prune entries
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// WithoutEcho stops entries from being mirrored to the process log
func WithoutEcho() Option {
	return func(j *Journal) { j.echo = false }
}

// New opens the journal at path, loading any entries already on disk
func New(path string, opts ...Option) *Journal {
	j := &Journal{
		path:    path,
		entries: make([]types.LogEntry, 0),
		now:     time.Now,
		echo:    true,
	}
	for _, opt := range opts {
		opt(j)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("⚠️  Failed to create log directory: %v", err)
	}
	j.load()
	return j
}

// load reads every line of the log file, skipping lines that do not decode
// or carry an unknown level
func (j *Journal) load() {
	f, err := os.Open(j.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️  Failed to load logs: %v", err)
		}
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	skipped := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry types.LogEntry
		if err := json.Unmarshal(line, &entry); err != nil || entry.Timestamp.IsZero() || !entry.Level.Valid() {
			skipped++
			continue
		}
		j.entries = append(j.entries, entry)
	}
	if err := scanner.Err(); err != nil {
		log.Printf("⚠️  Stopped reading logs early: %v", err)
	}
	if skipped > 0 {
		log.Printf("⚠️  Skipped %d malformed log line(s) in %s", skipped, j.path)
	}
}

// Record appends one entry in memory and on disk
func (j *Journal) Record(level types.Level, message, source string) types.LogEntry {
	entry := types.LogEntry{
		Timestamp: j.now().UTC(),
		Level:     level,
		Message:   message,
		Source:    source,
	}

	j.mu.Lock()
	// Keep stamps non-decreasing even if the wall clock steps back
	if n := len(j.entries); n > 0 && entry.Timestamp.Before(j.entries[n-1].Timestamp) {
		entry.Timestamp = j.entries[n-1].Timestamp
	}
	j.entries = append(j.entries, entry)
	err := j.appendLine(entry)
	j.mu.Unlock()

	if err != nil {
		log.Printf("⚠️  Failed to write log: %v", err)
	}
	if j.echo {
		echo(entry)
	}
	return entry
}

// Info records an info entry
func (j *Journal) Info(message, source string) {
	j.Record(types.LevelInfo, message, source)
}

// Success records a success entry
func (j *Journal) Success(message, source string) {
	j.Record(types.LevelSuccess, message, source)
}

// Error records an error entry
func (j *Journal) Error(message, source string) {
	j.Record(types.LevelError, message, source)
}

// Recent returns up to limit of the newest entries, oldest first
func (j *Journal) Recent(limit int) []types.LogEntry {
	if limit <= 0 {
		return []types.LogEntry{}
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	start := 0
	if len(j.entries) > limit {
		start = len(j.entries) - limit
	}
	out := make([]types.LogEntry, len(j.entries)-start)
	copy(out, j.entries[start:])
	return out
}

// Len returns the number of retained entries
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// PruneOlderThan drops entries stamped before now minus days and rewrites
// the file to the retained set. Memory is pruned even if the rewrite fails.
func (j *Journal) PruneOlderThan(days int) (int, error) {
	cutoff := j.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)

	j.mu.Lock()
	defer j.mu.Unlock()

	kept := make([]types.LogEntry, 0, len(j.entries))
	for _, e := range j.entries {
		if !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	removed := len(j.entries) - len(kept)
	j.entries = kept

	if err := j.rewrite(); err != nil {
		return removed, fmt.Errorf("rewrite log: %w", err)
	}
	return removed, nil
}

// appendLine writes one entry to the end of the file (must hold lock)
func (j *Journal) appendLine(entry types.LogEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// rewrite replaces the file with the in-memory entries (must hold lock)
func (j *Journal) rewrite() error {
	var buf bytes.Buffer
	for _, e := range j.entries {
		line, err := json.Marshal(e)
		if err != nil {
			return err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, j.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func echo(e types.LogEntry) {
	source := e.Source
	if source == "" {
		source = "SYSTEM"
	}
	switch e.Level {
	case types.LevelSuccess:
		log.Printf("[%s] ✓ %s", source, e.Message)
	case types.LevelError:
		log.Printf("[%s] ❌ %s", source, e.Message)
	default:
		log.Printf("[%s] %s", source, e.Message)
	}
}
