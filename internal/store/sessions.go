package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/recipebox/recipe-api/internal/domain"
)

const (
	sessionPrefix        = "session:"
	sessionByTokenPrefix = "session:token:"
	sessionByUserPrefix  = "session:user:"
)

// SessionStoreOptions configures OpenSessionStore.
type SessionStoreOptions struct {
	// Path is the Badger directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// SessionStore keeps refresh sessions in Badger. Every key is written with
// a TTL matching the session expiry, so expired sessions disappear without
// a sweep.
type SessionStore struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// OpenSessionStore opens (or creates) the session database.
func OpenSessionStore(opts SessionStoreOptions) (*SessionStore, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		bopts = badger.DefaultOptions(opts.Path)
		bopts.SyncWrites = true
		bopts.CompactL0OnClose = true
	}
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Session store opened", "path", opts.Path, "in_memory", opts.InMemory)

	return &SessionStore{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// Ping fails once the store is closed.
func (s *SessionStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("session store closed")
	}
	return nil
}

// RunGC reclaims value-log space. It returns the number of files rewritten.
func (s *SessionStore) RunGC(discardRatio float64) (int, error) {
	rewritten := 0
	for {
		err := s.db.RunValueLogGC(discardRatio)
		switch {
		case err == nil:
			rewritten++
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return rewritten, nil
		default:
			return rewritten, fmt.Errorf("value log gc: %w", err)
		}
	}
}

func sessionKey(id string) []byte { return []byte(sessionPrefix + id) }

func tokenKey(hash string) []byte { return []byte(sessionByTokenPrefix + hash) }

func userIndexKey(userID, sessionID string) []byte {
	return []byte(sessionByUserPrefix + userID + ":" + sessionID)
}

func (s *SessionStore) ttl(session *domain.Session) (time.Duration, error) {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return 0, ErrSessionExpired
	}
	return ttl, nil
}

// CreateSession stores a new session and its token and user indexes.
func (s *SessionStore) CreateSession(_ context.Context, session *domain.Session) error {
	ttl, err := s.ttl(session)
	if err != nil {
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(sessionKey(session.ID)); err == nil {
			return fmt.Errorf("session %s already exists", session.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		entries := []*badger.Entry{
			badger.NewEntry(sessionKey(session.ID), data).WithTTL(ttl),
			badger.NewEntry(tokenKey(session.RefreshTokenHash), []byte(session.ID)).WithTTL(ttl),
			badger.NewEntry(userIndexKey(session.UserID, session.ID), nil).WithTTL(ttl),
		}
		for _, e := range entries {
			if err := txn.SetEntry(e); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSession returns a live session by ID.
func (s *SessionStore) GetSession(_ context.Context, id string) (*domain.Session, error) {
	var session *domain.Session
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		session, err = getSession(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if session.IsExpired(s.now()) {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// GetSessionByRefreshToken resolves a session through its token hash.
func (s *SessionStore) GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var sessionID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey(tokenHash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("lookup session by token: %w", err)
	}

	return s.GetSession(ctx, sessionID)
}

// UpdateSession rewrites a session, moving the token index if the refresh
// token was rotated and refreshing every TTL to the new expiry.
func (s *SessionStore) UpdateSession(_ context.Context, session *domain.Session) error {
	ttl, err := s.ttl(session)
	if err != nil {
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		old, err := getSession(txn, session.ID)
		if err != nil {
			return err
		}

		if old.RefreshTokenHash != session.RefreshTokenHash {
			if err := txn.Delete(tokenKey(old.RefreshTokenHash)); err != nil {
				return err
			}
		}

		entries := []*badger.Entry{
			badger.NewEntry(sessionKey(session.ID), data).WithTTL(ttl),
			badger.NewEntry(tokenKey(session.RefreshTokenHash), []byte(session.ID)).WithTTL(ttl),
			badger.NewEntry(userIndexKey(session.UserID, session.ID), nil).WithTTL(ttl),
		}
		for _, e := range entries {
			if err := txn.SetEntry(e); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteSession removes a session and its indexes. Deleting a missing
// session is not an error.
func (s *SessionStore) DeleteSession(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		session, err := getSession(txn, id)
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return deleteSessionKeys(txn, session)
	})
}

// DeleteUserSessions removes every session of userID and returns how many.
func (s *SessionStore) DeleteUserSessions(ctx context.Context, userID string) (int, error) {
	ids, err := s.userSessionIDs(userID)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := s.DeleteSession(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// ListUserSessions returns the live sessions of userID.
func (s *SessionStore) ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	ids, err := s.userSessionIDs(userID)
	if err != nil {
		return nil, err
	}

	sessions := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.GetSession(ctx, id)
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *SessionStore) userSessionIDs(userID string) ([]string, error) {
	prefix := []byte(sessionByUserPrefix + userID + ":")
	var ids []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), string(prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	return ids, nil
}

func getSession(txn *badger.Txn, id string) (*domain.Session, error) {
	item, err := txn.Get(sessionKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session domain.Session
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &session)
	}); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func deleteSessionKeys(txn *badger.Txn, session *domain.Session) error {
	for _, key := range [][]byte{
		sessionKey(session.ID),
		tokenKey(session.RefreshTokenHash),
		userIndexKey(session.UserID, session.ID),
	} {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
