// Package fetcher discovers run-sheet files for a batch scope: a local
// directory tree or an FTP drop folder, both laid out as
// <root>/<YYYY-MM-DD>/<driver>-<anything>.{pdf,xlsx}.
package fetcher

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/fieldserve/runsheet-cli/internal/model"
)

// LocalFetcher lists run sheets from a directory tree.
type LocalFetcher struct {
	root string
}

// NewLocal creates a fetcher over the given root directory.
func NewLocal(root string) *LocalFetcher {
	return &LocalFetcher{root: root}
}

// ListDate returns the run-sheet files for one calendar day. A missing day
// directory is an empty day, not an error.
func (f *LocalFetcher) ListDate(date time.Time) ([]model.RunSheetFile, error) {
	dir := filepath.Join(f.root, model.DateKey(date))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "fetcher: read dir %s", dir)
	}

	var files []model.RunSheetFile
	for _, e := range entries {
		if e.IsDir() || !isRunSheet(e.Name()) {
			continue
		}
		files = append(files, model.RunSheetFile{
			ID:       uuid.New(),
			FilePath: filepath.Join(dir, e.Name()),
			Driver:   DriverFromName(e.Name()),
			Date:     date,
		})
	}
	return files, nil
}

// ListRange returns files for every day in [from, to], inclusive.
func (f *LocalFetcher) ListRange(from, to time.Time) ([]model.RunSheetFile, error) {
	var files []model.RunSheetFile
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		day, err := f.ListDate(d)
		if err != nil {
			return nil, err
		}
		files = append(files, day...)
	}
	return files, nil
}

// DriverFromName extracts the driver token from a file name such as
// "smith-20240301-am.pdf": everything before the first dash or dot.
func DriverFromName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.IndexAny(base, "-_"); i > 0 {
		return strings.ToUpper(base[:i])
	}
	return strings.ToUpper(base)
}

func isRunSheet(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".xlsx", ".xlsm":
		return true
	}
	return false
}
