package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/missionai/agrimesh/blob"
	"github.com/missionai/agrimesh/core"
	"github.com/missionai/agrimesh/logging"
)

// Options configure a Store.
type Options struct {
	// Durable is the blob backend sessions persist through. Defaults to an
	// in-memory store, which is only suitable for tests and demos.
	Durable core.BlobStore

	// Logger receives structured store events. Defaults to NoOp.
	Logger logging.Logger
}

// Store owns all in-memory sessions and conversation histories and their
// durable copies. Exactly one in-memory session exists per active user id.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*core.Session
	histories map[string][]core.ConversationTurn
	userLocks map[string]*sync.Mutex

	durable core.BlobStore
	logger  logging.Logger
}

// RestoreResult reports what a durable restore found.
type RestoreResult struct {
	ProfileRestored bool `json:"profile_restored"`
	HistoryRestored bool `json:"history_restored"`
	TurnCount       int  `json:"turn_count"`
}

// New constructs a session store with defaulted options.
func New(optFns ...func(o *Options)) *Store {
	opts := Options{
		Durable: blob.NewMemoryStore(),
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Durable == nil {
		opts.Durable = blob.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Store{
		sessions:  make(map[string]*core.Session),
		histories: make(map[string][]core.ConversationTurn),
		userLocks: make(map[string]*sync.Mutex),
		durable:   opts.Durable,
		logger:    opts.Logger,
	}
}

// lockFor returns the mutex serializing all mutation for one user id.
func (s *Store) lockFor(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	return l
}

// Get returns the session for the user id, restoring it from durable storage
// if it is not in memory and creating a default session if nothing was
// restored. LastActiveAt is refreshed as a side effect. The returned session
// is a clone; mutations must go through Save.
func (s *Store) Get(userID string) *core.Session {
	l := s.lockFor(userID)
	l.Lock()
	defer l.Unlock()

	sess := s.lookup(userID)
	if sess == nil {
		s.restoreLocked(userID)
		sess = s.lookup(userID)
	}
	if sess == nil {
		sess = core.NewSession(userID)
		s.put(userID, sess)
		s.logger.Debug("created default session", "user_id", userID)
	}
	sess.LastActiveAt = time.Now().UTC()
	return sess.Clone()
}

// Save merges the partial update into the in-memory session (creating it if
// absent), refreshes LastActiveAt and synchronously writes the full updated
// session to durable storage.
func (s *Store) Save(userID string, update core.SessionUpdate) error {
	l := s.lockFor(userID)
	l.Lock()
	defer l.Unlock()

	sess := s.lookup(userID)
	if sess == nil {
		s.restoreLocked(userID)
		sess = s.lookup(userID)
	}
	if sess == nil {
		sess = core.NewSession(userID)
		s.put(userID, sess)
	}
	update.Apply(sess)
	sess.LastActiveAt = time.Now().UTC()

	if err := s.writeProfile(userID, sess); err != nil {
		return err
	}
	s.logger.Debug("session saved", "user_id", userID)
	return nil
}

// AppendTurn appends a conversation turn, truncates the in-memory history to
// the most recent MaxStoredTurns entries and writes the truncated history to
// durable storage. The session record itself is not mutated. A turn without
// a timestamp is stamped with the current UTC time.
func (s *Store) AppendTurn(userID string, turn core.ConversationTurn) error {
	l := s.lockFor(userID)
	l.Lock()
	defer l.Unlock()

	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	history := append(s.histories[userID], turn)
	if len(history) > core.MaxStoredTurns {
		history = history[len(history)-core.MaxStoredTurns:]
	}
	s.histories[userID] = history
	snapshot := append([]core.ConversationTurn(nil), history...)
	s.mu.Unlock()

	return s.writeHistory(userID, snapshot)
}

// RecentTurns returns up to n of the most recent turns for context reads.
// Regardless of n, never more than MaxContextTurns are returned.
func (s *Store) RecentTurns(userID string, n int) []core.ConversationTurn {
	if n <= 0 || n > core.MaxContextTurns {
		n = core.MaxContextTurns
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.histories[userID]
	if len(history) > n {
		history = history[len(history)-n:]
	}
	return append([]core.ConversationTurn(nil), history...)
}

// Persist forces a write of whatever is currently in memory for the user to
// durable storage. It returns true iff at least one of session or history
// was present and written.
func (s *Store) Persist(userID string) bool {
	l := s.lockFor(userID)
	l.Lock()
	defer l.Unlock()

	sess := s.lookup(userID)
	s.mu.Lock()
	history, haveHistory := s.histories[userID]
	snapshot := append([]core.ConversationTurn(nil), history...)
	s.mu.Unlock()

	profileSaved := false
	if sess != nil {
		profileSaved = s.writeProfile(userID, sess) == nil
	}
	historySaved := false
	if haveHistory {
		historySaved = s.writeHistory(userID, snapshot) == nil
	}

	s.logger.Info("session persisted", "user_id", userID, "profile", profileSaved, "history", historySaved)
	return profileSaved || historySaved
}

// Restore loads the user's durable records into memory without creating
// defaults. Missing records are not an error; either, both or neither may
// exist.
func (s *Store) Restore(userID string) RestoreResult {
	l := s.lockFor(userID)
	l.Lock()
	defer l.Unlock()
	return s.restoreLocked(userID)
}

// DeleteAll removes the in-memory session and history and deletes both
// durable records. It is idempotent and returns true when all deletions
// succeeded.
func (s *Store) DeleteAll(userID string) bool {
	l := s.lockFor(userID)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	delete(s.sessions, userID)
	delete(s.histories, userID)
	s.mu.Unlock()

	ok := true
	if err := s.durable.DeleteBlob(core.ProfileKey(userID)); err != nil {
		s.logger.Error("delete profile record failed", "user_id", userID, "error", err)
		ok = false
	}
	if err := s.durable.DeleteBlob(core.HistoryKey(userID)); err != nil {
		s.logger.Error("delete history record failed", "user_id", userID, "error", err)
		ok = false
	}
	if ok {
		s.logger.Info("all user data deleted", "user_id", userID)
	}
	return ok
}

// restoreLocked loads the profile and history records independently; caller
// must hold the user lock.
func (s *Store) restoreLocked(userID string) RestoreResult {
	var res RestoreResult

	if data, exists, err := s.durable.LoadBlob(core.ProfileKey(userID)); err != nil {
		s.logger.Error("load profile record failed", "user_id", userID, "error", err)
	} else if exists {
		var sess core.Session
		if err := json.Unmarshal(data, &sess); err != nil {
			s.logger.Error("decode profile record failed", "user_id", userID, "error", err)
		} else {
			s.put(userID, &sess)
			res.ProfileRestored = true
		}
	}

	if data, exists, err := s.durable.LoadBlob(core.HistoryKey(userID)); err != nil {
		s.logger.Error("load history record failed", "user_id", userID, "error", err)
	} else if exists {
		var history []core.ConversationTurn
		if err := json.Unmarshal(data, &history); err != nil {
			s.logger.Error("decode history record failed", "user_id", userID, "error", err)
		} else if len(history) > 0 {
			s.mu.Lock()
			s.histories[userID] = history
			s.mu.Unlock()
			res.HistoryRestored = true
			res.TurnCount = len(history)
		}
	}

	if res.ProfileRestored || res.HistoryRestored {
		s.logger.Info("session restored", "user_id", userID, "turns", res.TurnCount)
	}
	return res
}

func (s *Store) lookup(userID string) *core.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[userID]
}

func (s *Store) put(userID string, sess *core.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sess
}

func (s *Store) writeProfile(userID string, sess *core.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", userID, err)
	}
	if err := s.durable.SaveBlob(core.ProfileKey(userID), data); err != nil {
		s.logger.Error("write profile record failed", "user_id", userID, "error", err)
		return err
	}
	return nil
}

func (s *Store) writeHistory(userID string, history []core.ConversationTurn) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history %s: %w", userID, err)
	}
	if err := s.durable.SaveBlob(core.HistoryKey(userID), data); err != nil {
		s.logger.Error("write history record failed", "user_id", userID, "error", err)
		return err
	}
	return nil
}
