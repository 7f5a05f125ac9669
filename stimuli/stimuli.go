// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stimuli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

var ErrNoStimuli = errors.New("no stimuli for requested version")

// Stimulus is one row of the stimulus list file.
type Stimulus struct {
	Version       string
	StimulusLabel string
	Person        string
	URL           string
}

// Load reads the stimulus list CSV. The first record is the header row;
// recognized columns are version, label, stimulus_label, person, and url.
// Unknown columns are ignored so the file can carry annotation columns.
func Load(path string) ([]Stimulus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stimulus list: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse stimulus list: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("stimulus list is empty")
	}

	// Header row maps column name to position
	col := make(map[string]int)
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["version"]; !ok {
		return nil, errors.New("stimulus list missing version column")
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	list := make([]Stimulus, 0, len(records)-1)
	for _, row := range records[1:] {
		s := Stimulus{
			Version:       strings.ToLower(field(row, "version")),
			StimulusLabel: field(row, "label"),
			Person:        field(row, "person"),
			URL:           field(row, "url"),
		}
		// Label fallback: label, then stimulus_label. Rows with neither
		// keep an empty label until FillLabels runs on the shuffled order.
		if s.StimulusLabel == "" {
			s.StimulusLabel = field(row, "stimulus_label")
		}
		list = append(list, s)
	}

	return list, nil
}

// FilterVersion returns the stimuli matching the given version,
// case-insensitively. An empty result is ErrNoStimuli.
func FilterVersion(list []Stimulus, version string) ([]Stimulus, error) {
	version = strings.ToLower(strings.TrimSpace(version))

	var sub []Stimulus
	for _, s := range list {
		if s.Version == version {
			sub = append(sub, s)
		}
	}
	if len(sub) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoStimuli, version)
	}
	return sub, nil
}

// Shuffle returns a randomly ordered copy of the list. The input is not
// modified; the returned order is fixed for the lifetime of a run.
func Shuffle(list []Stimulus) []Stimulus {
	out := make([]Stimulus, len(list))
	copy(out, list)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// FillLabels assigns a positional "itemN" label to every stimulus that
// has none. N is the 1-based position in the given order, so it should
// run after Shuffle has fixed the presentation order.
func FillLabels(list []Stimulus) {
	for i := range list {
		if list[i].StimulusLabel == "" {
			list[i].StimulusLabel = fmt.Sprintf("item%d", i+1)
		}
	}
}
