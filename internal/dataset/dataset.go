package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Skufu/heartcheck/internal/predict"
)

var ErrBadDataset = errors.New("invalid reference dataset")

const targetColumn = "target"

// Dataset is the historical reference data shipped next to the model.
// It is read once at startup and only summarized.
type Dataset struct {
	Path    string
	Records []predict.Record
	Targets []int
}

func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, err
	}
	ds.Path = path
	return ds, nil
}

func Read(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrBadDataset, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range predict.Columns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadDataset, name)
		}
	}
	targetAt, hasTarget := index[targetColumn]

	ds := &Dataset{}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadDataset, line, err)
		}

		values := make([]float64, len(predict.Columns))
		for i, name := range predict.Columns {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[index[name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %v", ErrBadDataset, line, name, err)
			}
			values[i] = v
		}
		ds.Records = append(ds.Records, fromValues(values))

		if hasTarget {
			t, err := strconv.Atoi(strings.TrimSpace(row[targetAt]))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column target: %v", ErrBadDataset, line, err)
			}
			ds.Targets = append(ds.Targets, t)
		}
	}
	return ds, nil
}

func fromValues(v []float64) predict.Record {
	return predict.Record{
		Age:      int(v[0]),
		Sex:      int(v[1]),
		CP:       int(v[2]),
		Trestbps: int(v[3]),
		Chol:     int(v[4]),
		FBS:      int(v[5]),
		Restecg:  int(v[6]),
		Thalach:  int(v[7]),
		Exang:    int(v[8]),
		Oldpeak:  v[9],
		Slope:    int(v[10]),
		CA:       int(v[11]),
		Thal:     int(v[12]),
	}
}

func (d *Dataset) Len() int {
	return len(d.Records)
}

// PositiveRate is the share of rows labelled 1. ok is false when the file
// has no target column or no rows.
func (d *Dataset) PositiveRate() (rate float64, ok bool) {
	if len(d.Targets) == 0 {
		return 0, false
	}
	positives := 0
	for _, t := range d.Targets {
		if t == 1 {
			positives++
		}
	}
	return float64(positives) / float64(len(d.Targets)), true
}
