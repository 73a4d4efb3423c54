package dispatch

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/ombralis/packdispatch/core/model"
)

// JournalRecord is one dispatch operation as retained for audit.
type JournalRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Strategy   string    `json:"strategy"`
	CallerRole string    `json:"caller_role"`
	Requested  int       `json:"requested"`
	UnitIDs    []string  `json:"unit_ids"`
	ElapsedMS  int64     `json:"elapsed_ms"`
}

// NewJournalRecord builds a record from a completed dispatch call.
func NewJournalRecord(strategy, role string, requested int, units []model.StoredUnit, elapsed time.Duration) JournalRecord {
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return JournalRecord{
		Timestamp:  time.Now().UTC(),
		Strategy:   strategy,
		CallerRole: role,
		Requested:  requested,
		UnitIDs:    ids,
		ElapsedMS:  elapsed.Milliseconds(),
	}
}

// JournalQuery filters journal reads.
type JournalQuery struct {
	Start    time.Time
	End      time.Time
	Strategy string
}

// Journal persists dispatch operations.
type Journal interface {
	Append(ctx context.Context, rec JournalRecord) error
	Query(ctx context.Context, q JournalQuery) ([]JournalRecord, error)
	Close() error
}

// JSONLJournal stores records in a JSONL file.
type JSONLJournal struct {
	path string
	mu   sync.Mutex
}

// NewJSONLJournal creates the file if needed.
func NewJSONLJournal(path string) (*JSONLJournal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &JSONLJournal{path: path}, nil
}

func (j *JSONLJournal) Append(_ context.Context, rec JournalRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return json.NewEncoder(f).Encode(rec)
}

func (j *JSONLJournal) Query(_ context.Context, q JournalQuery) ([]JournalRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.Open(j.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var res []JournalRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r JournalRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
			continue
		}
		if !q.End.IsZero() && r.Timestamp.After(q.End) {
			continue
		}
		if q.Strategy != "" && r.Strategy != q.Strategy {
			continue
		}
		res = append(res, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (j *JSONLJournal) Close() error { return nil }
