package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/forcelayout/internal/export"
	"github.com/san-kum/forcelayout/internal/layout"
)

const (
	metadataFile  = "metadata.json"
	positionsFile = "positions.csv"
	metricsFile   = "metrics.csv"
)

// Store keeps finished layout runs on disk, one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Graph     string             `json:"graph"`
	Timestamp time.Time          `json:"timestamp"`
	Preset    string             `json:"preset,omitempty"`
	Nodes     int                `json:"nodes"`
	Edges     int                `json:"edges"`
	Ticks     uint64             `json:"ticks"`
	Elapsed   time.Duration      `json:"elapsed"`
	Workers   int                `json:"workers"`
	Config    layout.Config      `json:"config"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes meta, the final positions of snap and the per-tick metric
// series. ID, Timestamp, Nodes, Edges and Ticks are filled in from the
// arguments. It returns the new run id.
func (s *Store) Save(meta RunMetadata, snap *layout.Snapshot, g *layout.Graph, series map[string][]float64) (string, error) {
	meta.ID = fmt.Sprintf("%s_%s", meta.Graph, uuid.New().String()[:8])
	meta.Timestamp = time.Now()
	meta.Nodes = g.Len()
	meta.Edges = len(g.Links())
	meta.Ticks = snap.Tick

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, positionsFile), func(f *os.File) error {
		return export.WriteCSV(f, snap, g)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, metricsFile), func(f *os.File) error {
		return writeSeries(f, series)
	}); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeSeries writes one row per tick with a column per metric, in name
// order. Shorter series leave trailing cells empty.
func writeSeries(f *os.File, series map[string][]float64) error {
	names := make([]string, 0, len(series))
	rows := 0
	for name, vals := range series {
		names = append(names, name)
		rows = max(rows, len(vals))
	}
	sort.Strings(names)

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"tick"}, names...)); err != nil {
		return err
	}
	for i := 0; i < rows; i++ {
		row := []string{strconv.Itoa(i + 1)}
		for _, name := range names {
			vals := series[name]
			if i < len(vals) {
				row = append(row, strconv.FormatFloat(vals[i], 'g', 10, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadSeries reads the metric history of a run.
func (s *Store) LoadSeries(runID string) (map[string][]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, metricsFile))
	if err != nil {
		return nil, err
	}
	series := make(map[string][]float64)
	if len(records) == 0 {
		return series, nil
	}
	names := records[0][1:]
	for _, record := range records[1:] {
		for j, name := range names {
			if j+1 >= len(record) || record[j+1] == "" {
				continue
			}
			val, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				continue
			}
			series[name] = append(series[name], val)
		}
	}
	return series, nil
}

// LoadPositions reads the final positions of a run.
func (s *Store) LoadPositions(runID string) ([]layout.Position, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, positionsFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []layout.Position{}, nil
	}

	out := make([]layout.Position, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 4 {
			continue
		}
		id, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			continue
		}
		x, errX := strconv.ParseFloat(record[2], 64)
		y, errY := strconv.ParseFloat(record[3], 64)
		if errX != nil || errY != nil {
			continue
		}
		out = append(out, layout.Position{ID: layout.NodeID(id), X: x, Y: y})
	}
	return out, nil
}
