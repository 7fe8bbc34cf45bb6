// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

import (
	"encoding/json"
	"fmt"
	"sort"

	bolt "go.etcd.io/bbolt"
)

// =============================================================================
// STORE
// =============================================================================

// Bucket names. Personas and settings live in the same file under
// separate namespaces.
var (
	bucketPersonas = []byte("personas")
	bucketSettings = []byte("settings")
)

// Settings keys.
const (
	KeyServerURL = "server_url"
	KeyLastModel = "last_model"
)

// Store persists personas and application settings to a local
// key-value database with plain JSON values. A missing key is always
// "use the documented default", never fatal.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the store at path. The file is
// created with 0600 permissions.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketPersonas); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketSettings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// PERSONA CRUD
// =============================================================================

// List returns all personas sorted by name.
func (s *Store) List() ([]*Persona, error) {
	var personas []*Persona
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPersonas).ForEach(func(_, v []byte) error {
			var p Persona
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("failed to unmarshal persona: %w", err)
			}
			personas = append(personas, &p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(personas, func(i, j int) bool {
		return personas[i].Name < personas[j].Name
	})
	return personas, nil
}

// Get returns the persona with the given id, or ErrNotFound.
func (s *Store) Get(id string) (*Persona, error) {
	var p *Persona
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketPersonas).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		p = &Persona{}
		return json.Unmarshal(v, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Save validates and writes a persona. When the persona is flagged as
// default, the flag is cleared on every other persona in the same
// transaction so exactly one default exists.
func (s *Store) Save(p *Persona) error {
	if err := p.Normalize(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPersonas)

		if p.IsDefault {
			if err := clearDefaults(b, p.ID); err != nil {
				return err
			}
		}

		v, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal persona: %w", err)
		}
		return b.Put([]byte(p.ID), v)
	})
}

// Delete removes a persona. Deleting a missing id is not an error.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPersonas).Delete([]byte(id))
	})
}

// SetDefault marks the given persona as the default, clearing the flag
// everywhere else. Returns ErrNotFound for an unknown id.
func (s *Store) SetDefault(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPersonas)

		v := b.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		var p Persona
		if err := json.Unmarshal(v, &p); err != nil {
			return fmt.Errorf("failed to unmarshal persona: %w", err)
		}

		if err := clearDefaults(b, id); err != nil {
			return err
		}

		p.IsDefault = true
		nv, err := json.Marshal(&p)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), nv)
	})
}

// Default returns the default persona, or nil when none is flagged.
func (s *Store) Default() (*Persona, error) {
	personas, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, p := range personas {
		if p.IsDefault {
			return p, nil
		}
	}
	return nil, nil
}

// clearDefaults unsets IsDefault on every persona except keep.
func clearDefaults(b *bolt.Bucket, keep string) error {
	type rewrite struct {
		key   []byte
		value []byte
	}
	var rewrites []rewrite

	err := b.ForEach(func(k, v []byte) error {
		if string(k) == keep {
			return nil
		}
		var p Persona
		if err := json.Unmarshal(v, &p); err != nil || !p.IsDefault {
			return nil
		}
		p.IsDefault = false
		nv, err := json.Marshal(&p)
		if err != nil {
			return err
		}
		rewrites = append(rewrites, rewrite{key: append([]byte(nil), k...), value: nv})
		return nil
	})
	if err != nil {
		return err
	}

	for _, rw := range rewrites {
		if err := b.Put(rw.key, rw.value); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// Setting returns the raw string value for a settings key, or "" when
// the key is absent.
func (s *Store) Setting(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketSettings).Get([]byte(key)); v != nil {
			value = string(v)
		}
		return nil
	})
	return value, err
}

// SetSetting writes a settings key.
func (s *Store) SetSetting(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSettings).Put([]byte(key), []byte(value))
	})
}

// ServerURL returns the persisted server URL, or "" when unset.
func (s *Store) ServerURL() (string, error) {
	return s.Setting(KeyServerURL)
}

// SetServerURL persists the server URL.
func (s *Store) SetServerURL(url string) error {
	return s.SetSetting(KeyServerURL, url)
}

// LastModel returns the last-selected model, or "" when unset.
func (s *Store) LastModel() (string, error) {
	return s.Setting(KeyLastModel)
}

// SetLastModel persists the last-selected model.
func (s *Store) SetLastModel(model string) error {
	return s.SetSetting(KeyLastModel, model)
}
