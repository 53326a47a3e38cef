package scan

import (
	"os"
	"path/filepath"

	"github.com/Lafeng/weakdh/exception"
	log "github.com/Lafeng/weakdh/glog"
)

var NOT_A_DIRECTORY = exception.New("The given parameter is not a directory:")

// IsDir reports whether path names a directory, following symlinks.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// ListTranscripts returns the regular files directly inside dir in
// ascending name order. Subdirectories are not entered.
func ListTranscripts(dir string) ([]string, error) {
	if !IsDir(dir) {
		return nil, NOT_A_DIRECTORY.Apply(dir)
	}
	// ReadDir sorts by file name
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			if log.V(log.LV_SKIP) {
				log.Infoln("Skip non-regular entry", path)
			}
			continue
		}
		files = append(files, path)
	}
	return files, nil
}
