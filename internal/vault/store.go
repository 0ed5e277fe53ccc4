package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/dmitrijs2005/nestkey/internal/cryptox"
	"github.com/dmitrijs2005/nestkey/internal/filex"
	"github.com/dmitrijs2005/nestkey/internal/session"
	"github.com/google/uuid"
)

// Store reads and writes vault.enc inside a data directory.
//
// All methods take the session explicitly and fail with common.ErrLocked,
// before touching the filesystem, when it holds no key. A store-wide mutex
// serializes read-modify-write cycles.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewStore returns a Store for dir/vault.enc.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, common.VaultFileName), now: time.Now}
}

// Path returns the vault file location.
func (s *Store) Path() string {
	return s.path
}

// ReadAll decrypts and returns every entry. A missing file is an empty
// vault, not an error.
func (s *Store) ReadAll(sess *session.Session) ([]Entry, error) {
	key, err := sess.RequireUnlocked()
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(key)
}

// WriteAll replaces the vault with entries.
func (s *Store) WriteAll(sess *session.Session, entries []Entry) error {
	key, err := sess.RequireUnlocked()
	if err != nil {
		return err
	}
	defer key.Wipe()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(key, entries)
}

// Wipe deletes the vault file if present. It does not clear the session.
func (s *Store) Wipe(sess *session.Session) error {
	key, err := sess.RequireUnlocked()
	if err != nil {
		return err
	}
	key.Wipe()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := filex.RemoveIfExists(s.path); err != nil {
		return fmt.Errorf("%w: %v", common.ErrIO, err)
	}
	return nil
}

// Add appends entry under a freshly generated id and returns the stored
// copy. Any id supplied by the caller is discarded.
func (s *Store) Add(sess *session.Session, entry Entry) (Entry, error) {
	var added Entry
	err := s.modify(sess, func(entries []Entry) ([]Entry, bool, error) {
		ts := s.now().Unix()
		entry.ID = uuid.NewString()
		entry.CreatedAt = ts
		entry.UpdatedAt = ts
		added = entry
		return append(entries, entry), true, nil
	})
	return added, err
}

// Update overwrites the fields of the entry with id. The id and creation
// time are preserved. An unknown id yields common.ErrNotFound and leaves
// the file untouched.
func (s *Store) Update(sess *session.Session, id string, entry Entry) (Entry, error) {
	var updated Entry
	err := s.modify(sess, func(entries []Entry) ([]Entry, bool, error) {
		i := Find(entries, id)
		if i < 0 {
			return nil, false, fmt.Errorf("entry %s: %w", id, common.ErrNotFound)
		}
		entry.ID = id
		entry.CreatedAt = entries[i].CreatedAt
		entry.UpdatedAt = s.now().Unix()
		entries[i] = entry
		updated = entry
		return entries, true, nil
	})
	return updated, err
}

// Delete removes the entry with id. Deleting an unknown id succeeds without
// rewriting the file.
func (s *Store) Delete(sess *session.Session, id string) error {
	return s.modify(sess, func(entries []Entry) ([]Entry, bool, error) {
		i := Find(entries, id)
		if i < 0 {
			return entries, false, nil
		}
		return append(entries[:i], entries[i+1:]...), true, nil
	})
}

// Rewrap re-encrypts the vault from oldKey to newKey. A missing vault is
// left missing.
func (s *Store) Rewrap(oldKey, newKey cryptox.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	entries, err := s.read(oldKey)
	if err != nil {
		return err
	}
	return s.write(newKey, entries)
}

// modify runs one locked read-modify-write cycle. fn reports whether the
// list changed; unchanged lists are not written back.
func (s *Store) modify(sess *session.Session, fn func([]Entry) ([]Entry, bool, error)) error {
	key, err := sess.RequireUnlocked()
	if err != nil {
		return err
	}
	defer key.Wipe()

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read(key)
	if err != nil {
		return err
	}

	entries, changed, err := fn(entries)
	if err != nil || !changed {
		return err
	}
	return s.write(key, entries)
}

func (s *Store) read(key cryptox.Key) ([]Entry, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read vault: %v", common.ErrIO, err)
	}

	blob, err := cryptox.DecodeBlob(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCorruptVault, err)
	}

	plaintext, err := cryptox.Open(blob, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecryptionFailed, err)
	}
	defer common.WipeByteArray(plaintext)

	var entries []Entry
	if err := json.Unmarshal(plaintext, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptVault, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (s *Store) write(key cryptox.Key, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}

	plaintext, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: encode vault: %v", common.ErrInternal, err)
	}
	defer common.WipeByteArray(plaintext)

	blob, err := cryptox.Seal(plaintext, key)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	raw, err := cryptox.EncodeBlob(blob)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	if err := filex.EnsureDir(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrIO, err)
	}
	if err := filex.WriteFileAtomic(s.path, raw, filex.FilePerm); err != nil {
		return fmt.Errorf("%w: %v", common.ErrIO, err)
	}
	return nil
}
