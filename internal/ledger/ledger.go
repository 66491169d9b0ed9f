// Package ledger maintains the append-only certification ledger: one JSON
// object per line, each entry back-referencing the previous entry's ID.
package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/humanklu/hkp/internal/model"
)

// Ledger is an append-only JSONL file. The read-tail/append pair runs under
// a mutex, so concurrent runs sharing one Ledger instance always chain a
// fresh back-reference. Cross-process exclusivity is the caller's problem.
type Ledger struct {
	path string

	mu         sync.Mutex
	tailID     string
	tailLoaded bool
}

// Open returns a ledger handle for the given path. The file is created on
// first append; a missing file simply means an empty chain.
func Open(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the ledger file location
func (l *Ledger) Path() string {
	return l.path
}

// Append chains and persists one entry: the entry's prev_entry_id is set to
// the current tail (null for the first entry), the line is written, and the
// in-memory tail advances. Returns the previous entry ID that was linked.
func (l *Ledger) Append(entry *model.LedgerEntry) (*string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.tailLoaded {
		l.tailID = l.readTail()
		l.tailLoaded = true
	}

	if l.tailID != "" {
		prev := l.tailID
		entry.PrevEntryID = &prev
	} else {
		entry.PrevEntryID = nil
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger entry: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	l.tailID = entry.EntryID
	return entry.PrevEntryID, nil
}

// readTail returns the entry_id of the last non-empty line, or "" when the
// file is missing, empty, or its last line does not parse. A corrupt tail
// is tolerated: the chain restarts from null rather than failing the run.
func (l *Ledger) readTail() string {
	f, err := os.Open(l.path)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	var last string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			last = line
		}
	}
	if err := scanner.Err(); err != nil || last == "" {
		return ""
	}

	var entry model.LedgerEntry
	if err := json.Unmarshal([]byte(last), &entry); err != nil {
		return ""
	}
	return entry.EntryID
}
