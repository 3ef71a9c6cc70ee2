package attendance

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// DefaultArchiveDir is where finished session logs are moved.
const DefaultArchiveDir = "csv_logs"

const archiveStampLayout = "20060102150405"

// ArchiveName builds "<start>_<end>.csv" with 14-digit timestamps.
func ArchiveName(start, end time.Time) string {
	return start.Format(archiveStampLayout) + "_" + end.Format(archiveStampLayout) + ".csv"
}

// Archive moves the log into dir under ArchiveName. A missing log is archived
// as an empty file. An existing archive is never overwritten: the end stamp
// is moved forward a second until the name is free. It returns the archive path.
func Archive(logPath, dir string, start, end time.Time) (string, error) {
	if _, err := os.Stat(logPath); errors.Is(err, os.ErrNotExist) {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return "", fmt.Errorf("create empty log: %w", err)
		}
		f.Close()
	} else if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create archive folder: %w", err)
	}

	if start.IsZero() {
		start = end
	}
	dest := filepath.Join(dir, ArchiveName(start, end))
	for exists(dest) {
		end = end.Add(time.Second)
		dest = filepath.Join(dir, ArchiveName(start, end))
	}

	if err := move(logPath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// move renames src to dst, copying across filesystems when rename cannot.
func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open log for archiving: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy log to archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	in.Close()
	return os.Remove(src)
}
