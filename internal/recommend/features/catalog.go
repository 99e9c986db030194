// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package features

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/cinecompass/internal/models"
)

// ErrEmptyCorpus is returned when no catalogue can be built from the input.
var ErrEmptyCorpus = errors.New("empty corpus")

// EmptyCorpusError reports how many items were offered to Build.
type EmptyCorpusError struct {
	Items int
}

func (e *EmptyCorpusError) Error() string {
	if e.Items == 0 {
		return "empty corpus: no catalogue items"
	}
	return fmt.Sprintf("empty corpus: no term survived vocabulary bounds across %d items", e.Items)
}

func (e *EmptyCorpusError) Unwrap() error { return ErrEmptyCorpus }

// Vocabulary maps terms to columns. Columns are in lexical term order.
type Vocabulary struct {
	terms []string
	index map[string]int
	idf   []float64
}

// Size returns the number of columns.
func (v *Vocabulary) Size() int { return len(v.terms) }

// Term returns the term at column i.
func (v *Vocabulary) Term(i int) string { return v.terms[i] }

// Column returns the column of term.
func (v *Vocabulary) Column(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Catalog is an immutable TF-IDF feature catalogue for one version.
// Items live in an arena ordered by movie id with an id-to-index map.
type Catalog struct {
	version int64
	items   []models.Movie
	vectors []SparseVector
	index   map[int]int
	vocab   *Vocabulary
	builtAt time.Time
}

// Version returns the catalogue version.
func (c *Catalog) Version() int64 { return c.version }

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// Item returns the movie at arena index idx.
func (c *Catalog) Item(idx int) models.Movie { return c.items[idx] }

// Vector returns the feature vector at arena index idx.
func (c *Catalog) Vector(idx int) SparseVector { return c.vectors[idx] }

// Index resolves a movie id to its arena index.
func (c *Catalog) Index(movieID int) (int, bool) {
	i, ok := c.index[movieID]
	return i, ok
}

// Vocabulary returns the shared vocabulary.
func (c *Catalog) Vocabulary() *Vocabulary { return c.vocab }

// BuiltAt returns when the catalogue was built.
func (c *Catalog) BuiltAt() time.Time { return c.builtAt }

// Build fits a TF-IDF space over items and returns a catalogue at version.
// Duplicate movie ids keep the first occurrence.
func Build(items []models.Movie, cfg Config, version int64) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature config: %w", err)
	}
	if len(items) == 0 {
		return nil, &EmptyCorpusError{Items: 0}
	}

	arena := make([]models.Movie, 0, len(items))
	seen := make(map[int]struct{}, len(items))
	for i := range items {
		if _, dup := seen[items[i].ID]; dup {
			continue
		}
		seen[items[i].ID] = struct{}{}
		arena = append(arena, items[i])
	}
	sort.Slice(arena, func(i, j int) bool { return arena[i].ID < arena[j].ID })

	n := len(arena)
	docs := make([][]string, n)
	df := make(map[string]int)
	cf := make(map[string]int)
	for i := range arena {
		docs[i] = ngrams(tokenize(featureString(arena[i], cfg)), cfg.NGramMin, cfg.NGramMax)
		distinct := make(map[string]struct{}, len(docs[i]))
		for _, t := range docs[i] {
			cf[t]++
			if _, ok := distinct[t]; !ok {
				distinct[t] = struct{}{}
				df[t]++
			}
		}
	}

	maxDocs := cfg.MaxDF * float64(n)
	kept := make([]string, 0, len(df))
	for t, d := range df {
		if d < cfg.MinDF || float64(d) > maxDocs {
			continue
		}
		kept = append(kept, t)
	}
	if cfg.MaxFeatures > 0 && len(kept) > cfg.MaxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if cf[kept[i]] != cf[kept[j]] {
				return cf[kept[i]] > cf[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:cfg.MaxFeatures]
	}
	if len(kept) == 0 {
		return nil, &EmptyCorpusError{Items: n}
	}
	sort.Strings(kept)

	vocab := &Vocabulary{
		terms: kept,
		index: make(map[string]int, len(kept)),
		idf:   make([]float64, len(kept)),
	}
	for col, t := range kept {
		vocab.index[t] = col
		vocab.idf[col] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}

	c := &Catalog{
		version: version,
		items:   arena,
		vectors: make([]SparseVector, n),
		index:   make(map[int]int, n),
		vocab:   vocab,
		builtAt: time.Now(),
	}
	for i := range arena {
		c.index[arena[i].ID] = i
		c.vectors[i] = vectorize(docs[i], vocab, cfg.SublinearTF)
	}
	return c, nil
}

func vectorize(doc []string, vocab *Vocabulary, sublinear bool) SparseVector {
	tf := make(map[int]float64)
	for _, t := range doc {
		if col, ok := vocab.index[t]; ok {
			tf[col]++
		}
	}
	cols := make([]int, 0, len(tf))
	for col := range tf {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	v := SparseVector{Indices: cols, Values: make([]float64, len(cols))}
	for k, col := range cols {
		w := tf[col]
		if sublinear {
			w = 1 + math.Log(w)
		}
		v.Values[k] = w * vocab.idf[col]
	}
	return v.Normalized()
}

// Snapshot is the serializable form of a Catalog.
type Snapshot struct {
	Version int64
	Items   []models.Movie
	Terms   []string
	IDF     []float64
	Vectors []SparseVector
	BuiltAt time.Time
}

// Snapshot exports the catalogue for persistence.
func (c *Catalog) Snapshot() Snapshot {
	return Snapshot{
		Version: c.version,
		Items:   c.items,
		Terms:   c.vocab.terms,
		IDF:     c.vocab.idf,
		Vectors: c.vectors,
		BuiltAt: c.builtAt,
	}
}

// FromSnapshot restores a catalogue exported by Snapshot.
//
//nolint:gocritic // hugeParam: Snapshot passed by value for immutability
func FromSnapshot(s Snapshot) (*Catalog, error) {
	if len(s.Items) == 0 {
		return nil, &EmptyCorpusError{Items: 0}
	}
	if len(s.Items) != len(s.Vectors) || len(s.Terms) != len(s.IDF) {
		return nil, fmt.Errorf("corrupt snapshot: %d items, %d vectors, %d terms, %d idf",
			len(s.Items), len(s.Vectors), len(s.Terms), len(s.IDF))
	}
	vocab := &Vocabulary{terms: s.Terms, idf: s.IDF, index: make(map[string]int, len(s.Terms))}
	for i, t := range s.Terms {
		vocab.index[t] = i
	}
	c := &Catalog{
		version: s.Version,
		items:   s.Items,
		vectors: s.Vectors,
		index:   make(map[int]int, len(s.Items)),
		vocab:   vocab,
		builtAt: s.BuiltAt,
	}
	for i := range s.Items {
		c.index[s.Items[i].ID] = i
	}
	return c, nil
}
