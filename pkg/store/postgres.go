package store

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/tdai-app/tdai/pkg/core/types"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Postgres is the database-backed store.
type Postgres struct {
	pool *pgxpool.Pool
}

// Open connects to the database and runs pending migrations.
func Open(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &Postgres{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Postgres) migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()
	return goose.UpContext(ctx, db, "migrations")
}

func (s *Postgres) EnsureUser(ctx context.Context, email string) (types.User, error) {
	email = NormalizeEmail(email)

	var u types.User
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, name)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET last_login = now()
		RETURNING email, name, COALESCE(avatar_url, ''), created_at, last_login`,
		email, defaultName(email),
	).Scan(&u.Email, &u.Profile.Name, &u.Profile.AvatarURL, &u.Activity.CreatedAt, &u.Activity.LastLogin)
	if err != nil {
		return types.User{}, fmt.Errorf("ensure user: %w", err)
	}
	return u, nil
}

func (s *Postgres) UpdateProfile(ctx context.Context, email string, profile types.UserProfile) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET name = $2, avatar_url = NULLIF($3, '')
		WHERE email = $1`,
		NormalizeEmail(email), profile.Name, profile.AvatarURL)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (s *Postgres) SaveChat(ctx context.Context, email string, chat types.ChatSession) error {
	messages, err := json.Marshal(chat.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO chats (id, user_email, title, messages, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, messages = EXCLUDED.messages`,
		chat.ID, NormalizeEmail(email), chat.Title, messages, chat.CreatedAt)
	if err != nil {
		return fmt.Errorf("save chat: %w", err)
	}
	return nil
}

func (s *Postgres) ListChats(ctx context.Context, email string) ([]types.ChatSession, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, messages, created_at
		FROM chats WHERE user_email = $1
		ORDER BY created_at DESC`,
		NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var chats []types.ChatSession
	for rows.Next() {
		var chat types.ChatSession
		var messages []byte
		if err := rows.Scan(&chat.ID, &chat.Title, &messages, &chat.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		if err := json.Unmarshal(messages, &chat.Messages); err != nil {
			return nil, fmt.Errorf("unmarshal messages: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

func (s *Postgres) DeleteChat(ctx context.Context, email, id string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM chats WHERE user_email = $1 AND id = $2`,
		NormalizeEmail(email), id)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

func (s *Postgres) Close() {
	s.pool.Close()
}
