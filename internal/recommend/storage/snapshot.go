// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

// Package storage persists feature catalogue snapshots.
//
// Snapshots are gob-encoded, gzip-compressed and carry a SHA-256 checksum
// of the raw payload. Files are named catalogue_v{version}.gob.gz so the
// latest version can be found by scanning the directory on startup.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/cinecompass/internal/recommend/features"
)

// ErrNoSnapshot is returned when no snapshot exists.
var ErrNoSnapshot = errors.New("no catalogue snapshot")

const (
	filePrefix = "catalogue_v"
	fileSuffix = ".gob.gz"
)

// Metadata describes a stored snapshot.
type Metadata struct {
	Version   int64     `json:"version"`
	ItemCount int       `json:"item_count"`
	Terms     int       `json:"terms"`
	SavedAt   time.Time `json:"saved_at"`
	Checksum  string    `json:"checksum"`
	SizeBytes int64     `json:"size_bytes"`
}

type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// Store manages snapshot files in one directory.
type Store struct {
	baseDir  string
	mu       sync.RWMutex
	versions []int64
}

// NewStore creates the directory if needed and indexes existing snapshots.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for snapshot storage
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	s := &Store{baseDir: baseDir}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan snapshots: %w", err)
	}
	return s, nil
}

func (s *Store) scan() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if v, ok := parseFilename(e.Name()); ok {
			s.versions = append(s.versions, v)
		}
	}
	sort.Slice(s.versions, func(i, j int) bool { return s.versions[i] < s.versions[j] })
	return nil
}

func parseFilename(name string) (int64, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func (s *Store) path(version int64) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s%d%s", filePrefix, version, fileSuffix))
}

// Save writes the catalogue as a snapshot.
func (s *Store) Save(ctx context.Context, c *features.Catalog) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(c.Snapshot()); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	sum := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	meta := Metadata{
		Version:   c.Version(),
		ItemCount: c.Len(),
		Terms:     c.Vocabulary().Size(),
		SavedAt:   time.Now(),
		Checksum:  hex.EncodeToString(sum[:]),
		SizeBytes: int64(compressed.Len()),
	}

	tmp := s.path(c.Version()) + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // path built from a numeric version
	if err != nil {
		return nil, fmt.Errorf("create snapshot file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(storedFile{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("write snapshot file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmp, s.path(c.Version())); err != nil {
		return nil, fmt.Errorf("commit snapshot file: %w", err)
	}

	s.addVersion(c.Version())
	return &meta, nil
}

func (s *Store) addVersion(v int64) {
	for _, x := range s.versions {
		if x == v {
			return
		}
	}
	s.versions = append(s.versions, v)
	sort.Slice(s.versions, func(i, j int) bool { return s.versions[i] < s.versions[j] })
}

// Latest returns the highest stored version.
func (s *Store) Latest() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.versions) == 0 {
		return 0, false
	}
	return s.versions[len(s.versions)-1], true
}

// Load restores the catalogue at version, or the latest when version is 0.
func (s *Store) Load(ctx context.Context, version int64) (*features.Catalog, *Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if version == 0 {
		v, ok := s.Latest()
		if !ok {
			return nil, nil, ErrNoSnapshot
		}
		version = v
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path(version)) //nolint:gosec // path built from a numeric version
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, ErrNoSnapshot
		}
		return nil, nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, nil, fmt.Errorf("read snapshot file: %w", err)
	}
	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer func() { _ = gzr.Close() }()

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("read decompressed snapshot: %w", err)
	}
	sum := sha256.Sum256(raw)
	if got := hex.EncodeToString(sum[:]); got != sf.Metadata.Checksum {
		return nil, nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, got)
	}

	var snap features.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&snap); err != nil {
		return nil, nil, fmt.Errorf("decode snapshot: %w", err)
	}
	c, err := features.FromSnapshot(snap)
	if err != nil {
		return nil, nil, err
	}
	return c, &sf.Metadata, nil
}

// Prune keeps only the newest keep snapshots.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if keep < 1 {
		keep = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.versions) <= keep {
		return 0, nil
	}
	drop := s.versions[:len(s.versions)-keep]
	removed := 0
	for _, v := range drop {
		if err := os.Remove(s.path(v)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("remove snapshot v%d: %w", v, err)
		}
		removed++
	}
	s.versions = append([]int64(nil), s.versions[len(s.versions)-keep:]...)
	return removed, nil
}
