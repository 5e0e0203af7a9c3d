// Package catalog holds the ordered list of purchasable entries and hands
// out their stable integer IDs. Mutations are journaled so the most recent
// unsaved change can be undone, and are persisted through a Backend.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/papapumpkin/foundry/internal/assetdb"
	"github.com/papapumpkin/foundry/internal/conflict"
	"github.com/papapumpkin/foundry/internal/logging"
	"go.uber.org/zap"
)

// Sentinel errors for catalog validation.
var (
	// ErrEmptyName indicates an entry name that is empty or only whitespace.
	ErrEmptyName = errors.New("catalog entry name is empty")
	// ErrNegativePrice indicates a price below zero.
	ErrNegativePrice = errors.New("catalog entry price is negative")
	// ErrDuplicate indicates a loaded catalog with repeated IDs or names.
	ErrDuplicate = errors.New("catalog has duplicate entries")
	// ErrNoBackend indicates Save was called on a store without a backend.
	ErrNoBackend = errors.New("catalog has no backend")
)

// Entry is one purchasable item.
type Entry struct {
	ID     int            `toml:"id"`
	Name   string         `toml:"name"`
	Price  int            `toml:"price"`
	Icon   assetdb.Handle `toml:"icon"`
	Prefab assetdb.Handle `toml:"prefab"`
}

// Outcome reports what Upsert did.
type Outcome string

const (
	// Created means a new entry was appended.
	Created Outcome = "created"
	// Overwritten means an existing entry's price, icon and prefab were replaced.
	Overwritten Outcome = "overwritten"
	// Declined means the overwrite prompt was cancelled and nothing changed.
	Declined Outcome = "declined"
)

type revision struct {
	label   string
	entries []Entry
	dirty   bool
}

// Store is the in-memory catalog. It is not safe for concurrent use.
type Store struct {
	entries []Entry
	journal []revision
	dirty   bool
	backend Backend
	log     *zap.Logger
}

// Open loads the catalog from b. A nil backend yields an empty store whose
// Save fails with ErrNoBackend.
func Open(ctx context.Context, b Backend, log *zap.Logger) (*Store, error) {
	log = logging.OrNop(log)
	s := &Store{backend: b, log: log}
	if b == nil {
		return s, nil
	}
	entries, err := b.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkUnique(entries); err != nil {
		return nil, err
	}
	s.entries = entries
	log.Debug("catalog loaded", zap.Int("entries", len(entries)))
	return s, nil
}

func checkUnique(entries []Entry) error {
	ids := make(map[int]bool, len(entries))
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		if ids[e.ID] {
			return fmt.Errorf("catalog: %w: id %d", ErrDuplicate, e.ID)
		}
		if names[e.Name] {
			return fmt.Errorf("catalog: %w: name %q", ErrDuplicate, e.Name)
		}
		ids[e.ID], names[e.Name] = true, true
	}
	return nil
}

// Entries returns a copy of the entries in insertion order.
func (s *Store) Entries() []Entry { return slices.Clone(s.entries) }

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Dirty reports whether the store has unsaved changes.
func (s *Store) Dirty() bool { return s.dirty }

// FindByName returns the entry whose name matches exactly.
func (s *Store) FindByName(name string) (Entry, bool) {
	if i := s.indexOf(name); i >= 0 {
		return s.entries[i], true
	}
	return Entry{}, false
}

// Has reports whether an entry named name exists.
func (s *Store) Has(name string) bool { return s.indexOf(name) >= 0 }

func (s *Store) indexOf(name string) int {
	for i := range s.entries {
		if s.entries[i].Name == name {
			return i
		}
	}
	return -1
}

// AllocateID returns the smallest non-negative ID not used by any entry.
func (s *Store) AllocateID() int {
	used := make(map[int]bool, len(s.entries))
	for _, e := range s.entries {
		used[e.ID] = true
	}
	id := 0
	for used[id] {
		id++
	}
	return id
}

// Upsert creates the entry named name, or, when it already exists and the
// policy answers Overwrite, replaces its price, icon and prefab in place.
// A Cancel answer returns the untouched entry with outcome Declined and a
// nil error. A nil policy is treated as Cancel.
func (s *Store) Upsert(ctx context.Context, name string, price int, icon, prefab assetdb.Handle, policy conflict.Policy) (Entry, Outcome, error) {
	if strings.TrimSpace(name) == "" {
		return Entry{}, "", ErrEmptyName
	}
	if price < 0 {
		return Entry{}, "", fmt.Errorf("%w: %d", ErrNegativePrice, price)
	}

	if i := s.indexOf(name); i >= 0 {
		existing := s.entries[i]
		decision := conflict.Cancel
		if policy != nil {
			desc := fmt.Sprintf("catalog entry %q (id %d, price %d)", name, existing.ID, existing.Price)
			d, err := policy.ConfirmOverwrite(ctx, desc)
			if err != nil {
				return Entry{}, "", fmt.Errorf("catalog: confirming overwrite of %q: %w", name, err)
			}
			decision = d
		}
		if decision != conflict.Overwrite {
			s.log.Info("catalog overwrite declined", zap.String("name", name))
			return existing, Declined, nil
		}

		s.record("overwrite " + name)
		e := &s.entries[i]
		e.Price, e.Icon, e.Prefab = price, icon, prefab
		s.log.Info("catalog entry overwritten", zap.String("name", name), zap.Int("id", e.ID))
		return *e, Overwritten, nil
	}

	s.record("create " + name)
	e := Entry{ID: s.AllocateID(), Name: name, Price: price, Icon: icon, Prefab: prefab}
	s.entries = append(s.entries, e)
	s.log.Info("catalog entry created", zap.String("name", name), zap.Int("id", e.ID))
	return e, Created, nil
}

// Remove deletes the entry named name, freeing its ID for reuse. It reports
// whether an entry was removed.
func (s *Store) Remove(name string) bool {
	i := s.indexOf(name)
	if i < 0 {
		return false
	}
	s.record("remove " + name)
	s.entries = slices.Delete(s.entries, i, i+1)
	return true
}

// record journals the current state under label and marks the store dirty.
func (s *Store) record(label string) {
	s.journal = append(s.journal, revision{label: label, entries: slices.Clone(s.entries), dirty: s.dirty})
	s.dirty = true
}

// Undo reverts the most recent unsaved mutation and returns its label.
func (s *Store) Undo() (string, bool) {
	if len(s.journal) == 0 {
		return "", false
	}
	last := s.journal[len(s.journal)-1]
	s.journal = s.journal[:len(s.journal)-1]
	s.entries = last.entries
	s.dirty = last.dirty
	return last.label, true
}

// Save persists every entry through the backend and clears the dirty flag
// and undo journal. On failure the store stays dirty.
func (s *Store) Save(ctx context.Context) error {
	if s.backend == nil {
		return ErrNoBackend
	}
	if err := s.backend.Save(ctx, s.entries); err != nil {
		return err
	}
	s.dirty = false
	s.journal = nil
	s.log.Debug("catalog saved", zap.Int("entries", len(s.entries)))
	return nil
}
