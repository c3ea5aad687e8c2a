package worker

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"acecheckin/internal/amqp"
)

// ledgerHeader is written once when the file is created or empty.
var ledgerHeader = []string{"timestamp", "kind", "record_id", "member_id", "member_name", "amount", "notes"}

// Ledger appends activity events to a CSV file. Every append is flushed so
// rows survive a worker crash.
type Ledger struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	path   string
}

// OpenLedger opens the CSV ledger at path for appending, creating the file
// and its directory as needed. A fresh or empty file gets the header row.
func OpenLedger(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat ledger file: %w", err)
	}

	l := &Ledger{
		file:   file,
		writer: csv.NewWriter(file),
		path:   path,
	}

	if info.Size() == 0 {
		if err := l.writer.Write(ledgerHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("write ledger header: %w", err)
		}
		l.writer.Flush()
		if err := l.writer.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("flush ledger header: %w", err)
		}
	}

	return l, nil
}

// Append writes one event as a CSV row and flushes it to disk.
func (l *Ledger) Append(event *amqp.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return fmt.Errorf("ledger is closed")
	}

	record := []string{
		event.Timestamp.UTC().Format(time.RFC3339),
		event.Kind,
		strconv.FormatInt(event.ID, 10),
		strconv.FormatInt(event.MemberID, 10),
		event.MemberName,
		event.Amount,
		event.Notes,
	}
	if err := l.writer.Write(record); err != nil {
		return fmt.Errorf("write ledger row: %w", err)
	}

	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		return fmt.Errorf("flush ledger row: %w", err)
	}
	return nil
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	l.writer.Flush()
	flushErr := l.writer.Error()
	closeErr := l.file.Close()

	l.file = nil
	l.writer = nil

	if flushErr != nil {
		return fmt.Errorf("flush ledger: %w", flushErr)
	}
	return closeErr
}
