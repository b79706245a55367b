// Package storage keeps a history of finished sessions on disk: one directory
// per run holding metadata.json and history.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/focusdrift/internal/session"
)

var (
	ErrNotFound  = errors.New("storage: run not found")
	ErrAmbiguous = errors.New("storage: run id prefix is ambiguous")
)

const (
	metadataFile = "metadata.json"
	historyFile  = "history.csv"
)

var historyHeader = []string{
	"tick", "elapsed", "remaining", "stress", "focus",
	"combo", "cleared", "locked", "live", "x", "y",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Preset    string          `json:"preset"`
	Policy    string          `json:"policy"`
	Seed      int64           `json:"seed"`
	TotalTime float64         `json:"total_time"`
	FixedStep bool            `json:"fixed_step"`
	Summary   session.Summary `json:"summary"`
}

// Save writes a run and returns its id. A missing ID or Timestamp is filled
// in.
func (s *Store) Save(meta RunMetadata, samples []session.Sample) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	if err := writeHistory(filepath.Join(runDir, historyFile), samples); err != nil {
		return "", fmt.Errorf("write history: %w", err)
	}
	return meta.ID, nil
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", runID, err)
	}
	return &meta, nil
}

// Resolve maps "", "latest" or a unique id prefix to a full run id.
func (s *Store) Resolve(ref string) (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrNotFound
	}
	if ref == "" || ref == "latest" {
		return runs[0].ID, nil
	}

	var match string
	for _, r := range runs {
		if r.ID == ref {
			return r.ID, nil
		}
		if strings.HasPrefix(r.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("%w: %s", ErrAmbiguous, ref)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return match, nil
}

func (s *Store) LoadHistory(runID string) ([]session.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, historyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []session.Sample{}, nil
	}

	samples := make([]session.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(historyHeader) {
			continue
		}
		sample, err := parseSample(record)
		if err != nil {
			continue
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeHistory(path string, samples []session.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(historyHeader); err != nil {
		return err
	}
	for _, s := range samples {
		if err := w.Write(formatSample(s)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatSample(s session.Sample) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return []string{
		strconv.Itoa(s.Tick),
		f(s.Elapsed),
		f(s.Remaining),
		f(s.Stress),
		f(s.Focus),
		strconv.Itoa(s.Combo),
		strconv.Itoa(s.Cleared),
		strconv.FormatBool(s.Locked),
		strconv.Itoa(s.Live),
		f(s.X),
		f(s.Y),
	}
}

func parseSample(record []string) (session.Sample, error) {
	var (
		s    session.Sample
		errs []error
	)
	atoi := func(v string) int {
		n, err := strconv.Atoi(v)
		errs = append(errs, err)
		return n
	}
	atof := func(v string) float64 {
		n, err := strconv.ParseFloat(v, 64)
		errs = append(errs, err)
		return n
	}

	s.Tick = atoi(record[0])
	s.Elapsed = atof(record[1])
	s.Remaining = atof(record[2])
	s.Stress = atof(record[3])
	s.Focus = atof(record[4])
	s.Combo = atoi(record[5])
	s.Cleared = atoi(record[6])
	locked, err := strconv.ParseBool(record[7])
	errs = append(errs, err)
	s.Locked = locked
	s.Live = atoi(record[8])
	s.X = atof(record[9])
	s.Y = atof(record[10])

	return s, errors.Join(errs...)
}
