package staging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"screendoc/internal/logging"
)

// JobDirPrefix is the naming prefix for per-job staging directories.
const JobDirPrefix = "job-"

// JobDir returns the staging directory for a job identifier.
func JobDir(stagingDir string, jobID int64) string {
	return filepath.Join(stagingDir, JobDirPrefix+strconv.FormatInt(jobID, 10))
}

// CleanStaleResult contains the outcome of a cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes staging directories older than maxAge whose job is no
// longer active. Directories for in-flight jobs are kept regardless of age.
func CleanStale(stagingDir string, maxAge time.Duration, activeJobIDs map[int64]struct{}, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return result
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dirPath := filepath.Join(stagingDir, entry.Name())
		if id, ok := parseJobDir(entry.Name()); ok {
			if _, active := activeJobIDs[id]; active {
				continue
			}
		}

		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale staging directory",
					logging.String("path", dirPath),
					logging.Error(err))
			}
		} else {
			result.Removed = append(result.Removed, dirPath)
			if logger != nil {
				logger.Info("removed stale staging directory",
					logging.String("path", dirPath),
					logging.Duration("age", time.Since(info.ModTime())))
			}
		}
	}

	return result
}

// ListDirectories returns all directories in the staging directory with their metadata.
func ListDirectories(stagingDir string) ([]DirInfo, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(stagingDir, entry.Name())
		size, _ := dirSize(dirPath)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}

	return dirs, nil
}

// DirInfo contains metadata about a staging directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

func parseJobDir(name string) (int64, bool) {
	if !strings.HasPrefix(name, JobDirPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(name, JobDirPrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// dirSize calculates the total size of a directory recursively, best effort.
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
