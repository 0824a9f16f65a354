package report

import (
	"encoding/json"
	"os"
	"sort"
	"time"
)

// Summary captures the headline numbers of one merge run.
type Summary struct {
	GeneratedAt     time.Time      `json:"generatedAt"`
	Sources         int            `json:"sources"`
	Accepted        int            `json:"accepted"`
	Duplicates      int            `json:"duplicates"`
	MissingCallsign map[string]int `json:"missingCallsign,omitempty"`
}

func SaveSummaryJSON(sum Summary, out string) error {
	b, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadSummaryJSON(path string) (Summary, error) {
	var sum Summary
	data, err := os.ReadFile(path)
	if err != nil {
		return sum, err
	}
	if err := json.Unmarshal(data, &sum); err != nil {
		return sum, err
	}
	return sum, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
