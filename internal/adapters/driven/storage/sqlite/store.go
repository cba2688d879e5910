// Package sqlite provides persistent storage backed by a local SQLite
// database. One Store owns the connection; the individual store interfaces
// are thin views over it.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/forgefit-labs/discovery/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage providing the workout, history,
// and preference store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.discovery/data/discovery.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".discovery", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "discovery.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// WorkoutStore returns a WorkoutStore interface backed by this store.
func (s *Store) WorkoutStore() driven.WorkoutStore {
	return &workoutStore{store: s}
}

// HistoryStore returns a HistoryStore interface backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// PreferenceStore returns a PreferenceStore interface backed by this store.
func (s *Store) PreferenceStore() driven.PreferenceStore {
	return &preferenceStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Workout Store ====================

// workoutStore implements driven.WorkoutStore.
type workoutStore struct {
	store *Store
}

var _ driven.WorkoutStore = (*workoutStore)(nil)

// SaveWorkout stores or replaces a workout.
func (s *workoutStore) SaveWorkout(ctx context.Context, doc *domain.WorkoutDocument) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}

	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}
	contentJSON, err := json.Marshal(doc.Content)
	if err != nil {
		return fmt.Errorf("marshalling content: %w", err)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO workouts (id, source, source_uri, title, summary, metadata, content, version_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			source_uri = excluded.source_uri,
			title = excluded.title,
			summary = excluded.summary,
			metadata = excluded.metadata,
			content = excluded.content,
			version_hash = excluded.version_hash,
			updated_at = excluded.updated_at
	`, doc.ID, string(doc.Source), doc.SourceURI, doc.Title, doc.Summary,
		string(metadataJSON), string(contentJSON), doc.VersionHash,
		doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving workout: %w", err)
	}
	return nil
}

// GetWorkout retrieves a workout by ID.
func (s *workoutStore) GetWorkout(ctx context.Context, id string) (*domain.WorkoutDocument, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source, source_uri, title, summary, metadata, content, version_hash, created_at, updated_at
		FROM workouts WHERE id = ?
	`, id)

	doc, err := scanWorkout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting workout: %w", err)
	}
	return doc, nil
}

// ListWorkouts returns all stored workouts, ordered by title.
func (s *workoutStore) ListWorkouts(ctx context.Context) ([]domain.WorkoutDocument, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source, source_uri, title, summary, metadata, content, version_hash, created_at, updated_at
		FROM workouts ORDER BY title COLLATE NOCASE
	`)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	defer rows.Close()

	var docs []domain.WorkoutDocument
	for rows.Next() {
		doc, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workouts: %w", err)
	}
	return docs, nil
}

// Close is a no-op; the owning Store holds the connection.
func (s *workoutStore) Close() error {
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row rowScanner) (*domain.WorkoutDocument, error) {
	var doc domain.WorkoutDocument
	var source, metadataJSON, contentJSON string
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&doc.ID, &source, &doc.SourceURI, &doc.Title, &doc.Summary,
		&metadataJSON, &contentJSON, &doc.VersionHash, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	doc.Source = domain.WorkoutSource(source)
	if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	if err := json.Unmarshal([]byte(contentJSON), &doc.Content); err != nil {
		return nil, fmt.Errorf("unmarshalling content: %w", err)
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}
	return &doc, nil
}

// ==================== History Store ====================

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// AppendSession records a completed session.
func (s *historyStore) AppendSession(ctx context.Context, session domain.Session) error {
	if session.ID == "" {
		return domain.ErrInvalidInput
	}

	tagsJSON, err := json.Marshal(session.FocusTags)
	if err != nil {
		return fmt.Errorf("marshalling focus tags: %w", err)
	}

	var endedAt any
	if !session.EndedAt.IsZero() {
		endedAt = session.EndedAt
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, workout_id, title, source, started_at, ended_at, duration_minutes, focus_tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, session.ID, session.WorkoutID, session.Title, string(session.Source),
		session.StartedAt, endedAt, session.DurationMinutes, string(tagsJSON))

	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// ListSessions returns completed sessions, most recent first.
func (s *historyStore) ListSessions(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, workout_id, title, source, started_at, ended_at, duration_minutes, focus_tags
		FROM sessions ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var session domain.Session
		var source, tagsJSON string
		var endedAt sql.NullTime

		if err := rows.Scan(&session.ID, &session.WorkoutID, &session.Title, &source,
			&session.StartedAt, &endedAt, &session.DurationMinutes, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}

		session.Source = domain.WorkoutSource(source)
		if endedAt.Valid {
			session.EndedAt = endedAt.Time
		}
		if err := json.Unmarshal([]byte(tagsJSON), &session.FocusTags); err != nil {
			return nil, fmt.Errorf("unmarshalling focus tags: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

// Close is a no-op; the owning Store holds the connection.
func (s *historyStore) Close() error {
	return nil
}

// ==================== Preference Store ====================

// preferenceStore implements driven.PreferenceStore.
type preferenceStore struct {
	store *Store
}

var _ driven.PreferenceStore = (*preferenceStore)(nil)

// Load returns the saved preferences, or defaults when none were saved.
func (s *preferenceStore) Load(ctx context.Context) (domain.DiscoveryPreferences, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT body FROM preferences WHERE id = 1`)

	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultPreferences(), nil
		}
		return domain.DiscoveryPreferences{}, fmt.Errorf("loading preferences: %w", err)
	}

	var prefs domain.DiscoveryPreferences
	if err := json.Unmarshal([]byte(body), &prefs); err != nil {
		return domain.DiscoveryPreferences{}, fmt.Errorf("unmarshalling preferences: %w", err)
	}
	return prefs, nil
}

// Save persists preferences.
func (s *preferenceStore) Save(ctx context.Context, prefs domain.DiscoveryPreferences) error {
	body, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshalling preferences: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO preferences (id, body, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, string(body), time.Now().UTC())

	if err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}
