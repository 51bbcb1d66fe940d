package trainrun

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bricsview/internal/config"
)

// Target is one trainable capture stage: the calibration data to train from
// and the artifact directory the trainer writes into.
type Target struct {
	Date      string
	Sequence  string
	DataDir   string
	ResultDir string
}

// Filter narrows target discovery. Empty fields match everything.
type Filter struct {
	Date     string
	Sequence string
}

// FindTargets walks the library for sequence directories whose stage
// directory exists. Results are sorted by date then sequence.
func FindTargets(cfg *config.Config, filter Filter) ([]Target, error) {
	root := cfg.Paths.LibraryRoot
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read library root %s: %w", root, err)
	}

	var targets []Target
	for _, dateEntry := range entries {
		if !dateEntry.IsDir() || !config.IsDateName(dateEntry.Name()) {
			continue
		}
		date := dateEntry.Name()
		if filter.Date != "" && filter.Date != date {
			continue
		}

		seqEntries, err := os.ReadDir(filepath.Join(root, date))
		if err != nil {
			continue
		}
		for _, seqEntry := range seqEntries {
			if !seqEntry.IsDir() || !strings.HasPrefix(seqEntry.Name(), cfg.Catalog.SequencePrefix) {
				continue
			}
			seq := seqEntry.Name()
			if filter.Sequence != "" && !strings.Contains(seq, filter.Sequence) {
				continue
			}

			dataDir := filepath.Join(root, date, seq, cfg.Trainer.StageDir)
			if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
				continue
			}
			targets = append(targets, Target{
				Date:      date,
				Sequence:  seq,
				DataDir:   dataDir,
				ResultDir: cfg.SessionDir(date, seq),
			})
		}
	}

	sort.Slice(targets, func(i, j int) bool {
		if targets[i].Date != targets[j].Date {
			return targets[i].Date < targets[j].Date
		}
		return targets[i].Sequence < targets[j].Sequence
	})
	return targets, nil
}
