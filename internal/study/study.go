// Package study persists a working directory of datasets and the test
// results recorded against them.
package study

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/hypocheck/internal/analysis"
	"github.com/KaramelBytes/hypocheck/internal/hypothesis"
	"github.com/KaramelBytes/hypocheck/internal/utils"
)

// Study is a named collection of datasets and recorded results persisted on disk.
type Study struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Datasets    map[string]*Dataset `json:"datasets"`
	Results     []*Record           `json:"results"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	// Not serialized: on-disk location of the study.json
	rootDir string `json:"-"`
}

// New constructs an in-memory study. Call Save() to persist.
func New(name, description, rootDir string) *Study {
	now := time.Now()
	return &Study{
		Name:        name,
		Description: description,
		Datasets:    make(map[string]*Dataset),
		CreatedAt:   now,
		UpdatedAt:   now,
		rootDir:     rootDir,
	}
}

// Load reads study.json from dir.
func Load(dir string) (*Study, error) {
	path := filepath.Join(dir, utils.StudyFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("study not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read study: %w", err)
	}
	var s Study
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse study: %w", err)
	}
	if s.Datasets == nil {
		s.Datasets = make(map[string]*Dataset)
	}
	s.rootDir = dir
	return &s, nil
}

// RootDir returns the on-disk study directory path.
func (s *Study) RootDir() string { return s.rootDir }

// Save writes study.json using atomic write.
func (s *Study) Save() error {
	if s.rootDir == "" {
		return errors.New("study root directory not set")
	}
	if err := utils.EnsureDir(s.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	s.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(s)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(s.rootDir, utils.StudyFile), data)
}

// AddDataset registers a loaded dataset. Re-adding the same path and sheet
// refreshes the existing entry and keeps its ID.
func (s *Study) AddDataset(ds *analysis.Dataset, description string) *Dataset {
	if s.Datasets == nil {
		s.Datasets = make(map[string]*Dataset)
	}
	d := s.Find(ds.Path, ds.Sheet)
	if d == nil {
		d = &Dataset{ID: uuid.NewString()}
		s.Datasets[d.ID] = d
	}
	d.Path = ds.Path
	d.Name = filepath.Base(ds.Path)
	d.Sheet = ds.Sheet
	d.Rows = ds.Processed
	d.Columns = ds.Table.Names()
	d.AddedAt = time.Now()
	if description != "" {
		d.Description = description
	}
	s.UpdatedAt = time.Now()
	return d
}

// Find returns the dataset registered for path and sheet, if any.
func (s *Study) Find(path, sheet string) *Dataset {
	for _, d := range s.Datasets {
		if d.Path == path && strings.EqualFold(d.Sheet, sheet) {
			return d
		}
	}
	return nil
}

// SortedDatasets returns the datasets ordered by name, then ID.
func (s *Study) SortedDatasets() []*Dataset {
	out := make([]*Dataset, 0, len(s.Datasets))
	for _, d := range s.Datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Record appends a test outcome. v is one of the hypothesis result types.
func (s *Study) Record(path string, v any) (*Record, error) {
	rec, err := newRecord(path, v)
	if err != nil {
		return nil, err
	}
	s.Results = append(s.Results, rec)
	s.UpdatedAt = rec.RecordedAt
	return rec, nil
}

func newRecord(path string, v any) (*Record, error) {
	var res *hypothesis.Result
	rec := &Record{ID: uuid.NewString(), Dataset: path, RecordedAt: time.Now()}
	switch r := v.(type) {
	case *hypothesis.Result:
		res = r
	case *hypothesis.BiserialResult:
		res = &r.Result
	case *hypothesis.RankResult:
		res = &r.Result
	case *hypothesis.AssociationResult:
		res = &r.Result
		rec.CramersV = r.CramersV
		rec.Strength = string(r.Strength)
	default:
		return nil, fmt.Errorf("cannot record %T", v)
	}
	rec.Test = string(res.Test)
	rec.Variables = append([]string(nil), res.Variables...)
	rec.Transform = res.Transform.String()
	rec.N = res.N
	rec.Statistic = res.Statistic
	rec.PValue = res.PValue
	rec.Conclusion = res.Conclusion.String()
	return rec, nil
}
