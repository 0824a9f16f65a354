// Package scan discovers ADIF log files and archives processed inputs. It is
// plain file plumbing around the core merger.
package scan

import (
	"os"
	"path/filepath"
	"strings"

	"example.com/adifmerge/internal/common"
)

// Discover lists ADIF files to merge: new files directly under root plus
// previously processed files under doneDir. Neither listing recurses. A
// missing doneDir is not an error.
func Discover(root, doneDir string) (newFiles, doneFiles []string, err error) {
	newFiles, err = listADIF(root)
	if err != nil {
		return nil, nil, err
	}
	doneFiles, err = listADIF(doneDir)
	if err != nil {
		if os.IsNotExist(err) {
			return newFiles, nil, nil
		}
		return nil, nil, err
	}
	return newFiles, doneFiles, nil
}

func listADIF(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !IsADIFName(entry.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	return out, nil
}

// IsADIFName reports whether name carries an ADIF log extension.
func IsADIFName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".adi", ".adif":
		return true
	}
	return false
}

// Archive moves processed input files into doneDir, prefixing each name with
// stamp so reruns never collide. Per-file failures are logged and skipped;
// the function reports how many files actually moved.
func Archive(files []string, doneDir, stamp string) int {
	if err := os.MkdirAll(doneDir, 0o755); err != nil {
		common.Logf("create %s: %v", doneDir, err)
		return 0
	}
	moved := 0
	for _, src := range files {
		dest := filepath.Join(doneDir, stamp+"-"+filepath.Base(src))
		if err := os.Rename(src, dest); err != nil {
			common.Logf("archive %s: %v", src, err)
			continue
		}
		moved++
	}
	return moved
}
