package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/translachat-server/internal/store"
	"github.com/vovakirdan/translachat-server/internal/utils"
)

//go:embed schema.sql
var schema string

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLite store.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, nil)
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to seed the schema or data before the first query.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; ":memory:" requires it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Migrate applies the embedded schema. It is safe to run more than once.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser stores a new account with a fresh ID unless one is set.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *store.User) (*store.User, error) {
	if u.ID == "" {
		u.ID = newID()
	}
	query := `
		INSERT INTO users (id, name, email, password_hash, preferred_language, account_disabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.PreferredLanguage, u.Disabled, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", mapError(err))
	}
	return s.GetUserByID(ctx, u.ID)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*store.User, error) {
	query := `
		SELECT id, name, email, password_hash, preferred_language, account_disabled, created_at
		FROM users
		WHERE ` + column + ` = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.PreferredLanguage,
		&user.Disabled,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("query user: %w", mapError(err))
	}
	return &user, nil
}

// UpdatePreferredLanguage changes the language of a user.
func (s *SQLiteStore) UpdatePreferredLanguage(ctx context.Context, id, lang string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET preferred_language = ? WHERE id = ?`, lang, id)
	if err != nil {
		return fmt.Errorf("update language: %w", err)
	}
	return expectRow(res)
}

// ==== RoomStore implementation ====

const roomColumns = `
	r.id, r.name, r.creator_id, r.created_at,
	(SELECT COUNT(*) FROM room_members m WHERE m.room_id = r.id)
`

// CreateRoom creates a room and adds the creator as its first member in one transaction.
func (s *SQLiteStore) CreateRoom(ctx context.Context, name, creatorID string) (*store.Room, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	id := newID()
	now := s.now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rooms (id, name, creator_id, created_at) VALUES (?, ?, ?, ?)`,
		id, name, creatorID, now); err != nil {
		return nil, fmt.Errorf("insert room: %w", mapError(err))
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO room_members (room_id, user_id, joined_at) VALUES (?, ?, ?)`,
		id, creatorID, now); err != nil {
		return nil, fmt.Errorf("add creator to members: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return s.FindRoom(ctx, id)
}

// FindRoom retrieves a room by ID.
func (s *SQLiteStore) FindRoom(ctx context.Context, id string) (*store.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms r WHERE r.id = ?`
	var room store.Room
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&room.ID,
		&room.Name,
		&room.CreatorID,
		&room.CreatedAt,
		&room.MemberCount,
	)
	if err != nil {
		return nil, fmt.Errorf("query room: %w", mapError(err))
	}
	return &room, nil
}

// ListRooms lists rooms newest first.
func (s *SQLiteStore) ListRooms(ctx context.Context, userID string, filter store.RoomFilter) ([]*store.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms r`
	var args []any
	switch filter {
	case store.RoomFilterAll:
	case store.RoomFilterJoined:
		query += ` WHERE EXISTS (SELECT 1 FROM room_members m WHERE m.room_id = r.id AND m.user_id = ?)`
		args = append(args, userID)
	case store.RoomFilterCreated:
		query += ` WHERE r.creator_id = ?`
		args = append(args, userID)
	default:
		return nil, fmt.Errorf("unknown room filter %q", filter)
	}
	query += ` ORDER BY r.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*store.Room
	for rows.Next() {
		var room store.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatorID, &room.CreatedAt, &room.MemberCount); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, &room)
	}

	return rooms, rows.Err()
}

// AddMember adds a user to a room.
func (s *SQLiteStore) AddMember(ctx context.Context, roomID, userID string) error {
	query := `
		INSERT OR IGNORE INTO room_members (room_id, user_id, joined_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, roomID, userID, s.now().UTC()); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// RemoveMember removes a user from a room.
func (s *SQLiteStore) RemoveMember(ctx context.Context, roomID, userID string) error {
	query := `DELETE FROM room_members WHERE room_id = ? AND user_id = ?`
	if _, err := s.db.ExecContext(ctx, query, roomID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// IsMember checks if user is a member of the room.
func (s *SQLiteStore) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM room_members WHERE room_id = ? AND user_id = ?)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, roomID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

// ListMembers lists all members of a room. Members without an account have an empty name.
func (s *SQLiteStore) ListMembers(ctx context.Context, roomID string) ([]store.Member, error) {
	query := `
		SELECT m.user_id, COALESCE(u.name, ''), m.joined_at
		FROM room_members m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.room_id = ?
		ORDER BY m.joined_at, m.rowid
	`
	rows, err := s.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []store.Member
	for rows.Next() {
		var m store.Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// ==== MessageStore implementation ====

// AppendMessage persists a message to the room history.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *store.Message) error {
	if msg.ID == "" {
		msg.ID = newID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	query := `
		INSERT INTO messages (id, room_id, sender_id, sender_name, sender_language,
			original_text, translated_text, detected_language, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.RoomID,
		msg.SenderID,
		msg.SenderName,
		msg.SenderLanguage,
		msg.OriginalText,
		msg.TranslatedText,
		msg.DetectedLanguage,
		msg.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", mapError(err))
	}
	return nil
}

// ListMessages returns the latest limit messages of a room, oldest first.
func (s *SQLiteStore) ListMessages(ctx context.Context, roomID string, limit int) ([]*store.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, room_id, sender_id, sender_name, sender_language,
			original_text, translated_text, detected_language, created_at
		FROM (
			SELECT *, rowid AS seq FROM messages
			WHERE room_id = ?
			ORDER BY seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(
			&m.ID,
			&m.RoomID,
			&m.SenderID,
			&m.SenderName,
			&m.SenderLanguage,
			&m.OriginalText,
			&m.TranslatedText,
			&m.DetectedLanguage,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}

	return messages, rows.Err()
}

// mapError translates driver errors into store sentinels.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) &&
		(sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func newID() string {
	return utils.NewID()
}
