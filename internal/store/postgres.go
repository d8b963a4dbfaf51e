package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"goboard/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS articles (
	article_id BIGSERIAL PRIMARY KEY,
	writer     TEXT NOT NULL,
	title      TEXT NOT NULL,
	contents   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS replies (
	reply_id   BIGSERIAL PRIMARY KEY,
	article_id BIGINT NOT NULL,
	writer     TEXT NOT NULL,
	contents   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	id       BIGSERIAL PRIMARY KEY,
	user_id  TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	name     TEXT NOT NULL,
	email    TEXT NOT NULL
);`

// NewPostgresStores connects to Postgres and ensures the schema exists.
// Generated identifiers come from the BIGSERIAL columns, surfaced through
// INSERT ... RETURNING. Durability and per-statement isolation are the
// engine's job; no locking happens in this layer.
func NewPostgresStores(url string) (*Stores, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Stores{
		Articles: &pqArticleStore{db: db},
		Replies:  &pqReplyStore{db: db},
		Users:    &pqUserStore{db: db},
		closer:   db.Close,
	}, nil
}

type pqArticleStore struct {
	db *sql.DB
}

func (s *pqArticleStore) Save(ctx context.Context, article model.Article) (model.Article, error) {
	if !article.Saved() {
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO articles (writer, title, contents, created_at)
			 VALUES ($1, $2, $3, $4) RETURNING article_id`,
			article.Writer, article.Title, article.Contents, article.CreatedAt,
		).Scan(&article.ID)
		if err != nil {
			return model.Article{}, fmt.Errorf("failed to insert article: %w", err)
		}
		return article, nil
	}

	// Updating an ID that was never assigned touches zero rows; that is
	// not an error here.
	_, err := s.db.ExecContext(ctx,
		`UPDATE articles SET title = $1, contents = $2 WHERE article_id = $3`,
		article.Title, article.Contents, article.ID,
	)
	if err != nil {
		return model.Article{}, fmt.Errorf("failed to update article: %w", err)
	}
	return article, nil
}

func (s *pqArticleStore) FindAll(ctx context.Context) ([]model.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT article_id, writer, title, contents, created_at
		 FROM articles ORDER BY article_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]model.Article, 0)
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.Writer, &a.Title, &a.Contents, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (s *pqArticleStore) FindByID(ctx context.Context, id int64) (model.Article, error) {
	var a model.Article
	err := s.db.QueryRowContext(ctx,
		`SELECT article_id, writer, title, contents, created_at
		 FROM articles WHERE article_id = $1`, id,
	).Scan(&a.ID, &a.Writer, &a.Title, &a.Contents, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Article{}, ErrNotFound
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("failed to find article: %w", err)
	}
	return a, nil
}

func (s *pqArticleStore) DeleteByID(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM articles WHERE article_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}

func (s *pqArticleStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM articles`); err != nil {
		return fmt.Errorf("failed to delete articles: %w", err)
	}
	return nil
}

type pqReplyStore struct {
	db *sql.DB
}

func (s *pqReplyStore) Save(ctx context.Context, reply model.Reply) (model.Reply, error) {
	if !reply.Saved() {
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO replies (article_id, writer, contents, created_at)
			 VALUES ($1, $2, $3, $4) RETURNING reply_id`,
			reply.ArticleID, reply.Writer, reply.Contents, reply.CreatedAt,
		).Scan(&reply.ID)
		if err != nil {
			return model.Reply{}, fmt.Errorf("failed to insert reply: %w", err)
		}
		return reply, nil
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE replies SET contents = $1 WHERE reply_id = $2`,
		reply.Contents, reply.ID,
	)
	if err != nil {
		return model.Reply{}, fmt.Errorf("failed to update reply: %w", err)
	}
	return reply, nil
}

func (s *pqReplyStore) FindByID(ctx context.Context, id int64) (model.Reply, error) {
	var r model.Reply
	err := s.db.QueryRowContext(ctx,
		`SELECT reply_id, article_id, writer, contents, created_at
		 FROM replies WHERE reply_id = $1`, id,
	).Scan(&r.ID, &r.ArticleID, &r.Writer, &r.Contents, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reply{}, ErrNotFound
	}
	if err != nil {
		return model.Reply{}, fmt.Errorf("failed to find reply: %w", err)
	}
	return r, nil
}

func (s *pqReplyStore) FindByArticleID(ctx context.Context, articleID int64) ([]model.Reply, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT reply_id, article_id, writer, contents, created_at
		 FROM replies WHERE article_id = $1 ORDER BY reply_id`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	defer rows.Close()

	replies := make([]model.Reply, 0)
	for rows.Next() {
		var r model.Reply
		if err := rows.Scan(&r.ID, &r.ArticleID, &r.Writer, &r.Contents, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		replies = append(replies, r)
	}
	return replies, rows.Err()
}

func (s *pqReplyStore) CountByArticleIDExcludingWriter(ctx context.Context, userID string, articleID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM replies WHERE article_id = $1 AND writer <> $2`,
		articleID, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count replies: %w", err)
	}
	return count, nil
}

func (s *pqReplyStore) DeleteByID(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM replies WHERE reply_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete reply: %w", err)
	}
	return nil
}

func (s *pqReplyStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM replies`); err != nil {
		return fmt.Errorf("failed to delete replies: %w", err)
	}
	return nil
}

type pqUserStore struct {
	db *sql.DB
}

func (s *pqUserStore) Save(ctx context.Context, user model.User) (model.User, error) {
	if !user.Saved() {
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO users (user_id, password, name, email)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			user.UserID, user.Password, user.Name, user.Email,
		).Scan(&user.ID)
		if err != nil {
			return model.User{}, fmt.Errorf("failed to insert user: %w", err)
		}
		return user, nil
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET password = $1, name = $2, email = $3 WHERE id = $4`,
		user.Password, user.Name, user.Email, user.ID,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *pqUserStore) FindAll(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, password, name, email FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.UserID, &u.Password, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *pqUserStore) FindByUserID(ctx context.Context, userID string) (model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, password, name, email FROM users WHERE user_id = $1`,
		userID,
	).Scan(&u.ID, &u.UserID, &u.Password, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

func (s *pqUserStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}
