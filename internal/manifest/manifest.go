// Package manifest describes the artifacts a merge run produced.
package manifest

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"example.com/adifmerge/internal/common"
)

type Item struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Sha256 string `json:"sha256"`
	Type   string `json:"type"`
}

type Manifest struct {
	CreatedAt time.Time `json:"createdAt"`
	ShaAlgo   string    `json:"shaAlgo"`
	Items     []Item    `json:"items"`
}

// Build hashes every path and classifies it by extension.
func Build(paths []string) (Manifest, error) {
	m := Manifest{CreatedAt: time.Now().UTC(), ShaAlgo: "sha256"}
	for _, p := range paths {
		hex, sz, err := common.Sha256OfFile(p)
		if err != nil {
			return m, err
		}
		typ := "other"
		switch {
		case hasExt(p, ".adi", ".adif"):
			typ = "adi"
		case hasExt(p, ".jsonl"):
			typ = "jsonl"
		case hasExt(p, ".json"):
			typ = "json"
		case hasExt(p, ".html"):
			typ = "html"
		case hasExt(p, ".pdf"):
			typ = "pdf"
		}
		m.Items = append(m.Items, Item{Path: p, Size: sz, Sha256: hex, Type: typ})
	}
	return m, nil
}

func hasExt(path string, exts ...string) bool {
	lower := strings.ToLower(path)
	for _, e := range exts {
		if strings.HasSuffix(lower, e) {
			return true
		}
	}
	return false
}

// Save writes the manifest as indented JSON.
func Save(m Manifest, out string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

// Digest returns the sha256 of the manifest's canonical JSON form; the report
// embeds it as a QR code so a printed report can be checked against the
// artifacts on disk.
func Digest(m Manifest) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return common.Sha256OfBytes(b), nil
}
