package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// ChainFile returns the fingerprint of the chain file the cached results
// came from. ok is false when nothing has been recorded.
func (s *Store) ChainFile() (fp FileFingerprint, ok bool, err error) {
	var modTime int64
	err = s.db.QueryRow(`SELECT path, size, mod_time FROM chain_files LIMIT 1`).
		Scan(&fp.Path, &fp.Size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return FileFingerprint{}, false, nil
	}
	if err != nil {
		return FileFingerprint{}, false, fmt.Errorf("query chain file: %w", err)
	}
	fp.ModTime = time.Unix(0, modTime)
	return fp, true, nil
}

// IsCurrent reports whether the cached results were produced by fp.
func (s *Store) IsCurrent(fp FileFingerprint) (bool, error) {
	cached, ok, err := s.ChainFile()
	if err != nil || !ok {
		return false, err
	}
	return cached.Path == fp.Path &&
		cached.Size == fp.Size &&
		cached.ModTime.Equal(fp.ModTime), nil
}

// SetChainFile records fp as the source of cached results. When fp differs
// from the recorded file, all cached results are dropped.
func (s *Store) SetChainFile(fp FileFingerprint) error {
	current, err := s.IsCurrent(fp)
	if err != nil {
		return err
	}
	if current {
		return nil
	}

	if err := s.ClearLiftResults(); err != nil {
		return fmt.Errorf("clear stale results: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM chain_files`); err != nil {
		return fmt.Errorf("clear chain file: %w", err)
	}
	if _, err := s.db.Exec(`INSERT INTO chain_files VALUES (?, ?, ?)`,
		fp.Path, fp.Size, fp.ModTime.UnixNano()); err != nil {
		return fmt.Errorf("record chain file: %w", err)
	}
	return nil
}
