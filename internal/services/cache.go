package services

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"retail-dashboard/internal/models"
)

const cacheVersion = "v2"

var errStaleCache = errors.New("cache does not match sources")

// sourceStamp identifies one input as it was when the cache was built.
type sourceStamp struct {
	Path    string
	Size    int64
	ModTime time.Time
}

type cachedDataset struct {
	Records []models.MergedRecord
	Sources []sourceStamp
}

// datasetCache stores the merged table as gob so a restart can skip the
// load and join when no source changed.
type datasetCache struct {
	dir string
}

func (c *datasetCache) filename(src Sources) string {
	key := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(filepath.Clean(src.TransactionsDir))
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.gob", key, cacheVersion))
}

// save records stamps taken before the load, so a source edited mid-load
// fails the next comparison instead of being masked.
func (c *datasetCache) save(src Sources, stamps []sourceStamp, records []models.MergedRecord) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(c.filename(src))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(cachedDataset{
		Records: records,
		Sources: stamps,
	})
}

func (c *datasetCache) load(src Sources) ([]models.MergedRecord, error) {
	stamps, err := stampSources(src)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(c.filename(src))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data cachedDataset
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, err
	}

	if !slices.EqualFunc(stamps, data.Sources, func(a, b sourceStamp) bool {
		return a.Path == b.Path && a.Size == b.Size && a.ModTime.Equal(b.ModTime)
	}) {
		return nil, errStaleCache
	}
	return data.Records, nil
}

// stampSources covers the reference files, the fragment directory itself
// (entries added or removed) and every fragment, in a fixed order.
func stampSources(src Sources) ([]sourceStamp, error) {
	paths := []string{src.CountryCodesFile, src.CustomersFile, src.ProductInfoFile, src.TransactionsDir}

	fragments, err := fragmentFiles(src.TransactionsDir)
	if err != nil {
		return nil, err
	}
	paths = append(paths, fragments...)

	stamps := make([]sourceStamp, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		stamps = append(stamps, sourceStamp{Path: abs, Size: info.Size(), ModTime: info.ModTime()})
	}
	return stamps, nil
}
