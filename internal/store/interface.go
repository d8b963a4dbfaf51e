package store

import (
	"context"
	"errors"

	"goboard/internal/model"
)

// ErrNotFound is returned by every backend when a looked-up record does
// not exist. Backends translate their engine's own not-found condition
// (sql.ErrNoRows, badger.ErrKeyNotFound) into it so callers never see a
// driver error.
var ErrNotFound = errors.New("record not found")

// ArticleStore persists articles. Save decides between insert and update
// solely on whether the article already carries an ID: a zero ID inserts
// and returns a copy with the generated ID set, a nonzero ID updates the
// mutable fields (title, contents) of the row with that ID. Updating an
// ID the backend has never assigned touches nothing and is not an error.
type ArticleStore interface {
	Save(ctx context.Context, article model.Article) (model.Article, error)
	FindAll(ctx context.Context) ([]model.Article, error)
	FindByID(ctx context.Context, id int64) (model.Article, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

// ReplyStore persists replies. Save follows the same insert-vs-update
// rule as ArticleStore. CountByArticleIDExcludingWriter counts replies on
// an article written by anyone but the given user; backends compute it
// without materializing the reply list.
type ReplyStore interface {
	Save(ctx context.Context, reply model.Reply) (model.Reply, error)
	FindByID(ctx context.Context, id int64) (model.Reply, error)
	FindByArticleID(ctx context.Context, articleID int64) ([]model.Reply, error)
	CountByArticleIDExcludingWriter(ctx context.Context, userID string, articleID int64) (int, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

// UserStore persists accounts. FindByUserID looks up by login name, the
// key articles and replies reference through Writer.
type UserStore interface {
	Save(ctx context.Context, user model.User) (model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	FindByUserID(ctx context.Context, userID string) (model.User, error)
	DeleteAll(ctx context.Context) error
}

// Stores bundles the three stores a backend provides plus its teardown.
type Stores struct {
	Articles ArticleStore
	Replies  ReplyStore
	Users    UserStore

	closer func() error
}

// Close releases the backend's resources, if it holds any.
func (s *Stores) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
