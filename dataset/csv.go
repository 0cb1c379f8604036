package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrMissingColumn = errors.New("missing column")

// WriteCSV writes observations with a header row, creating parent directories.
func WriteCSV(path string, observations []Observation) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := Encode(file, observations); err != nil {
		return err
	}
	return file.Close()
}

func Encode(w io.Writer, observations []Observation) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns()); err != nil {
		return err
	}
	for _, obs := range observations {
		record := []string{
			strconv.FormatFloat(obs.SleepHours, 'f', -1, 64),
			strconv.Itoa(obs.StressLevel),
			strconv.Itoa(obs.TimeOfDay),
			strconv.Itoa(obs.WorkloadLevel),
			strconv.FormatFloat(obs.CoffeeStrength, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV loads a dataset file. Columns are matched by header name, so their
// order in the file does not matter; extra columns are ignored.
func ReadCSV(path string) ([]Observation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()
	return Decode(file)
}

func Decode(r io.Reader) ([]Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	positions := make([]int, 0, len(Columns()))
	for _, name := range Columns() {
		pos, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		positions = append(positions, pos)
	}

	var observations []Observation
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		obs, err := parseRecord(record, positions)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		observations = append(observations, obs)
	}
	if len(observations) == 0 {
		return nil, ErrEmptyDataset
	}
	return observations, nil
}

func parseRecord(record []string, positions []int) (Observation, error) {
	var obs Observation
	var err error
	field := func(i int) string {
		return strings.TrimSpace(record[positions[i]])
	}

	if obs.SleepHours, err = strconv.ParseFloat(field(0), 64); err != nil {
		return obs, fmt.Errorf("%s: %w", ColSleepHours, err)
	}
	if obs.StressLevel, err = parseInt(field(1)); err != nil {
		return obs, fmt.Errorf("%s: %w", ColStressLevel, err)
	}
	if obs.TimeOfDay, err = parseInt(field(2)); err != nil {
		return obs, fmt.Errorf("%s: %w", ColTimeOfDay, err)
	}
	if obs.WorkloadLevel, err = parseInt(field(3)); err != nil {
		return obs, fmt.Errorf("%s: %w", ColWorkloadLevel, err)
	}
	if obs.CoffeeStrength, err = strconv.ParseFloat(field(4), 64); err != nil {
		return obs, fmt.Errorf("%s: %w", ColCoffeeStrength, err)
	}
	return obs, nil
}

// parseInt accepts "7" as well as "7.0", which spreadsheet exports produce.
func parseInt(value string) (int, error) {
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %s", value)
	}
	return int(f), nil
}
