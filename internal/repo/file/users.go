package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/omnibothq/omnibot/internal/domain/user"
	"github.com/omnibothq/omnibot/internal/security"
)

// UsersRepo is the single source of truth for user identity. The JSON file is
// authoritative; the in-memory map is a cache loaded at startup and rewritten
// wholly after every registration. All mutations go through the mutex so two
// concurrent registrations cannot both pass the duplicate-email check.
type UsersRepo struct {
	mu    sync.RWMutex
	path  string
	users map[string]user.User // keyed by id
	log   *slog.Logger
}

// on-disk shape of one users.json entry
type record struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"hashed_password"`
}

// Open loads the users file. A missing file is seeded with the demo user.
// An unreadable or corrupt file either fails (strict) or degrades to an empty
// store with a logged error, trading durability for availability.
func Open(path string, strict bool, log *slog.Logger) (*UsersRepo, error) {
	r := &UsersRepo{
		path:  path,
		users: make(map[string]user.User),
		log:   log,
	}

	data, err := os.ReadFile(path)

	if errors.Is(err, os.ErrNotExist) {
		if seedErr := r.seed(); seedErr != nil {
			if strict {
				return nil, fmt.Errorf("seed users file: %w", seedErr)
			}
			log.Error("could not seed users file, starting empty", "path", path, "err", seedErr)
		}
		return r, nil
	}

	if err != nil {
		if strict {
			return nil, fmt.Errorf("read users file: %w", err)
		}
		log.Error("could not read users file, starting empty", "path", path, "err", err)
		return r, nil
	}

	var records map[string]record

	if err := json.Unmarshal(data, &records); err != nil {
		if strict {
			return nil, fmt.Errorf("parse users file: %w", err)
		}
		log.Error("could not parse users file, starting empty", "path", path, "err", err)
		return r, nil
	}

	for id, rec := range records {
		r.users[id] = user.User{
			ID:           rec.ID,
			Email:        rec.Email,
			Name:         rec.Name,
			PasswordHash: rec.PasswordHash,
		}
	}

	return r, nil
}

// GetByEmail does a linear scan with a case-sensitive exact match. Emails are
// stored as entered; lowercasing them would be a behavior change, not a fix.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

// Create registers a new user. The duplicate-email check and the write happen
// under one lock; the file write is the commit point, memory is only mutated
// after it succeeds.
func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
	}

	next := make(map[string]user.User, len(r.users)+1)

	for id, existing := range r.users {
		next[id] = existing
	}
	next[u.ID] = u

	if err := r.persist(next); err != nil {
		return user.User{}, fmt.Errorf("persist users: %w", err)
	}

	r.users = next

	return u, nil
}

// Count reports the number of loaded users. Used by startup logging.
func (r *UsersRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users)
}

// persist writes the whole map to a temp file and renames it into place, so a
// crash mid-write never leaves a truncated store behind.
func (r *UsersRepo) persist(users map[string]user.User) error {
	records := make(map[string]record, len(users))

	for id, u := range users {
		records[id] = record{
			ID:           u.ID,
			Email:        u.Email,
			Name:         u.Name,
			PasswordHash: u.PasswordHash,
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")

	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}

	tmp := r.path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, r.path)
}

// seed creates the built-in demo account on first run.
func (r *UsersRepo) seed() error {
	hash, err := security.HashPassword("password123")

	if err != nil {
		return err
	}

	demo := user.User{
		ID:           "1",
		Email:        "demo@example.com",
		Name:         "Demo User",
		PasswordHash: hash,
	}

	if err := r.persist(map[string]user.User{demo.ID: demo}); err != nil {
		return err
	}

	r.users[demo.ID] = demo

	return nil
}
