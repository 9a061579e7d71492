package resultstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
	"github.com/G-Research/jobbench/pkg/client/domain"
)

const fileExtension = ".json"

// LoadedBatch is a batch record read back from disk.
type LoadedBatch struct {
	// File name without the extension.
	Label  string
	Path   string
	Result *domain.BatchResult
}

// LoadResult holds the batches that parsed, in file name order, and a warning for each file that
// didn't.
type LoadResult struct {
	Batches  []*LoadedBatch
	Warnings *multierror.Error
}

// DefaultFileName returns the name a batch started at the given time is saved under.
func DefaultFileName(batch *domain.BatchResult) string {
	return fmt.Sprintf("batch-test-results-%d%s", batch.Timestamp.Unix(), fileExtension)
}

// Save writes batch to path as indented JSON. An existing file is never overwritten.
func Save(batch *domain.BatchResult, path string) error {
	if err := batch.Validate(); err != nil {
		return errors.Wrapf(err, "refusing to save invalid batch to %s", path)
	}
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WithStack(err)
		}
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrapf(err, "could not create results file")
	}
	_, err = file.Write(append(data, '\n'))
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Wrapf(err, "could not write results file %s", path)
	}
	log.WithField("file", path).Infof("Saved results of %d jobs", batch.TotalJobs)
	return nil
}

// Load reads a single batch record.
func Load(path string) (*domain.BatchResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &jobbencherrors.ErrRecordParse{Path: path, Err: err}
	}
	batch := &domain.BatchResult{}
	if err := json.Unmarshal(data, batch); err != nil {
		return nil, &jobbencherrors.ErrRecordParse{Path: path, Err: err}
	}
	if err := batch.Validate(); err != nil {
		return nil, &jobbencherrors.ErrRecordParse{Path: path, Err: err}
	}
	return batch, nil
}

// LoadAll loads every *.json batch record in dir, in file name order. Files that can't be parsed are
// skipped with a warning. Only failing to list dir is an error.
func LoadAll(dir string) (*LoadResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read results directory")
	}
	result := &LoadResult{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != fileExtension {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		batch, err := Load(path)
		if err != nil {
			log.WithField("file", path).WithError(err).Warn("Skipping unreadable batch record")
			result.Warnings = multierror.Append(result.Warnings, err)
			continue
		}
		result.Batches = append(result.Batches, &LoadedBatch{
			Label:  strings.TrimSuffix(entry.Name(), fileExtension),
			Path:   path,
			Result: batch,
		})
	}
	log.Infof("Loaded %d batch records from %s", len(result.Batches), dir)
	return result, nil
}

func (r *LoadResult) NumWarnings() int {
	if r.Warnings == nil {
		return 0
	}
	return len(r.Warnings.Errors)
}
