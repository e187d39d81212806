package snapshots

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aristath/debtfolio/internal/domain"
	"gopkg.in/yaml.v3"
)

// fileDocument is the YAML layout of a snapshot file.
type fileDocument struct {
	Snapshots []domain.Snapshot `yaml:"snapshots"`
}

// FileSource serves snapshots read from a YAML document. Snapshots are
// matched by alias and the month of their cut-off date.
//
// Positions are already aggregated in the file, so the client filter of a
// query is ignored; the product filter applies.
type FileSource struct {
	snapshots []domain.Snapshot
}

// LoadFile reads a YAML snapshot file.
func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	src, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// ParseFile decodes a YAML snapshot document.
func ParseFile(data []byte) (*FileSource, error) {
	var doc fileDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}

	for i := range doc.Snapshots {
		s := &doc.Snapshots[i]
		if strings.TrimSpace(s.Alias) == "" {
			return nil, fmt.Errorf("snapshot %d: %w", i, ErrMissingAlias)
		}
		if s.CutoffDate == nil {
			return nil, fmt.Errorf("snapshot %d (%s): missing cutoff_date", i, s.Alias)
		}
		for j := range s.Positions {
			if s.Positions[j].SnapshotDate == nil {
				s.Positions[j].SnapshotDate = s.CutoffDate
			}
		}
	}
	return &FileSource{snapshots: doc.Snapshots}, nil
}

// Snapshot implements Source. A month absent from the file yields an empty
// snapshot.
func (f *FileSource) Snapshot(_ context.Context, q Query) (*domain.Snapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	for _, s := range f.snapshots {
		if !strings.EqualFold(s.Alias, q.Alias) {
			continue
		}
		if s.CutoffDate.Year() != q.Year || int(s.CutoffDate.Month()) != q.Month {
			continue
		}
		out := &domain.Snapshot{Alias: s.Alias, CutoffDate: s.CutoffDate}
		for _, p := range s.Positions {
			if len(q.ProductIDs) > 0 && !containsID(q.ProductIDs, p.ProductID) {
				continue
			}
			out.Positions = append(out.Positions, p)
		}
		return out, nil
	}
	return &domain.Snapshot{Alias: q.Alias}, nil
}

// WriteFile encodes snapshots as a YAML snapshot document.
func WriteFile(w io.Writer, snaps ...*domain.Snapshot) error {
	doc := fileDocument{Snapshots: make([]domain.Snapshot, 0, len(snaps))}
	for _, s := range snaps {
		if s != nil {
			doc.Snapshots = append(doc.Snapshots, *s)
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode snapshot file: %w", err)
	}
	return enc.Close()
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
