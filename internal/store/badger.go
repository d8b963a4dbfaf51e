package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"goboard/internal/model"
)

// Key layout: records live under per-entity prefixes with fixed-width
// decimal IDs, so prefix iteration visits them in ID order.
const (
	articleKeyFmt = "article:%020d"
	replyKeyFmt   = "reply:%020d"
	userKeyFmt    = "user:%020d"
)

// NewBadgerStores opens an embedded Badger database at path. Pass "" to
// run fully in memory (single-process deployments and tests). Identifiers
// come from Badger sequences, which persist across restarts and never
// hand out a value twice, deletions included.
func NewBadgerStores(path string) (*Stores, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = nil // Silence default logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	articleSeq, err := db.GetSequence([]byte("seq:articles"), 100)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open article sequence: %w", err)
	}
	replySeq, err := db.GetSequence([]byte("seq:replies"), 100)
	if err != nil {
		articleSeq.Release()
		db.Close()
		return nil, fmt.Errorf("failed to open reply sequence: %w", err)
	}
	userSeq, err := db.GetSequence([]byte("seq:users"), 100)
	if err != nil {
		articleSeq.Release()
		replySeq.Release()
		db.Close()
		return nil, fmt.Errorf("failed to open user sequence: %w", err)
	}

	return &Stores{
		Articles: &badgerArticleStore{db: db, seq: articleSeq},
		Replies:  &badgerReplyStore{db: db, seq: replySeq},
		Users:    &badgerUserStore{db: db, seq: userSeq},
		closer: func() error {
			articleSeq.Release()
			replySeq.Release()
			userSeq.Release()
			return db.Close()
		},
	}, nil
}

// nextID draws from a sequence. Sequences start at zero; record IDs start
// at one so a zero ID can keep meaning "not yet saved".
func nextID(seq *badger.Sequence) (int64, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to generate id: %w", err)
	}
	return int64(n) + 1, nil
}

// putIfExists overwrites key with value only when key is already present.
// This keeps the update path symmetric with the SQL backend, where an
// UPDATE on an unknown ID touches zero rows.
func putIfExists(txn *badger.Txn, key, value []byte) error {
	if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
		return nil
	} else if err != nil {
		return err
	}
	return txn.Set(key, value)
}

func deletePrefix(db *badger.DB, prefix []byte) error {
	return db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		keys := make([][]byte, 0)
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

type badgerArticleStore struct {
	db  *badger.DB
	seq *badger.Sequence
}

func (s *badgerArticleStore) Save(ctx context.Context, article model.Article) (model.Article, error) {
	if !article.Saved() {
		id, err := nextID(s.seq)
		if err != nil {
			return model.Article{}, err
		}
		article.ID = id

		data, err := json.Marshal(article)
		if err != nil {
			return model.Article{}, err
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			return txn.Set(articleKey(article.ID), data)
		})
		if err != nil {
			return model.Article{}, fmt.Errorf("failed to insert article: %w", err)
		}
		return article, nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		key := articleKey(article.ID)
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}

		var stored model.Article
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		}); err != nil {
			return err
		}
		stored.Update(article.Title, article.Contents)

		data, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return model.Article{}, fmt.Errorf("failed to update article: %w", err)
	}
	return article, nil
}

func (s *badgerArticleStore) FindAll(ctx context.Context) ([]model.Article, error) {
	articles := make([]model.Article, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("article:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var a model.Article
				if err := json.Unmarshal(val, &a); err != nil {
					return err
				}
				articles = append(articles, a)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

func (s *badgerArticleStore) FindByID(ctx context.Context, id int64) (model.Article, error) {
	var article model.Article
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(articleKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &article)
		})
	})
	if err == badger.ErrKeyNotFound {
		return model.Article{}, ErrNotFound
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("failed to find article: %w", err)
	}
	return article, nil
}

func (s *badgerArticleStore) DeleteByID(ctx context.Context, id int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(articleKey(id))
	})
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}

func (s *badgerArticleStore) DeleteAll(ctx context.Context) error {
	if err := deletePrefix(s.db, []byte("article:")); err != nil {
		return fmt.Errorf("failed to delete articles: %w", err)
	}
	return nil
}

func articleKey(id int64) []byte {
	return []byte(fmt.Sprintf(articleKeyFmt, id))
}

type badgerReplyStore struct {
	db  *badger.DB
	seq *badger.Sequence
}

func (s *badgerReplyStore) Save(ctx context.Context, reply model.Reply) (model.Reply, error) {
	if !reply.Saved() {
		id, err := nextID(s.seq)
		if err != nil {
			return model.Reply{}, err
		}
		reply.ID = id

		data, err := json.Marshal(reply)
		if err != nil {
			return model.Reply{}, err
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			return txn.Set(replyKey(reply.ID), data)
		})
		if err != nil {
			return model.Reply{}, fmt.Errorf("failed to insert reply: %w", err)
		}
		return reply, nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		key := replyKey(reply.ID)
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}

		var stored model.Reply
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		}); err != nil {
			return err
		}
		stored.Contents = reply.Contents

		data, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return model.Reply{}, fmt.Errorf("failed to update reply: %w", err)
	}
	return reply, nil
}

func (s *badgerReplyStore) FindByID(ctx context.Context, id int64) (model.Reply, error) {
	var reply model.Reply
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(replyKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &reply)
		})
	})
	if err == badger.ErrKeyNotFound {
		return model.Reply{}, ErrNotFound
	}
	if err != nil {
		return model.Reply{}, fmt.Errorf("failed to find reply: %w", err)
	}
	return reply, nil
}

func (s *badgerReplyStore) FindByArticleID(ctx context.Context, articleID int64) ([]model.Reply, error) {
	replies := make([]model.Reply, 0)
	err := s.scan(func(r model.Reply) {
		if r.ArticleID == articleID {
			replies = append(replies, r)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	return replies, nil
}

func (s *badgerReplyStore) CountByArticleIDExcludingWriter(ctx context.Context, userID string, articleID int64) (int, error) {
	count := 0
	err := s.scan(func(r model.Reply) {
		if r.ArticleID == articleID && !r.WrittenBy(userID) {
			count++
		}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count replies: %w", err)
	}
	return count, nil
}

// scan walks every reply record inside a single read transaction.
func (s *badgerReplyStore) scan(visit func(model.Reply)) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("reply:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var r model.Reply
				if err := json.Unmarshal(val, &r); err != nil {
					return err
				}
				visit(r)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *badgerReplyStore) DeleteByID(ctx context.Context, id int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(replyKey(id))
	})
	if err != nil {
		return fmt.Errorf("failed to delete reply: %w", err)
	}
	return nil
}

func (s *badgerReplyStore) DeleteAll(ctx context.Context) error {
	if err := deletePrefix(s.db, []byte("reply:")); err != nil {
		return fmt.Errorf("failed to delete replies: %w", err)
	}
	return nil
}

func replyKey(id int64) []byte {
	return []byte(fmt.Sprintf(replyKeyFmt, id))
}

type badgerUserStore struct {
	db  *badger.DB
	seq *badger.Sequence
}

func (s *badgerUserStore) Save(ctx context.Context, user model.User) (model.User, error) {
	insert := !user.Saved()
	if insert {
		id, err := nextID(s.seq)
		if err != nil {
			return model.User{}, err
		}
		user.ID = id
	}

	data, err := json.Marshal(user)
	if err != nil {
		return model.User{}, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		key := userKey(user.ID)
		if insert {
			return txn.Set(key, data)
		}
		return putIfExists(txn, key, data)
	})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}
	return user, nil
}

func (s *badgerUserStore) FindAll(ctx context.Context) ([]model.User, error) {
	users := make([]model.User, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("user:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var u model.User
				if err := json.Unmarshal(val, &u); err != nil {
					return err
				}
				users = append(users, u)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *badgerUserStore) FindByUserID(ctx context.Context, userID string) (model.User, error) {
	users, err := s.FindAll(ctx)
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if u.UserID == userID {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (s *badgerUserStore) DeleteAll(ctx context.Context) error {
	if err := deletePrefix(s.db, []byte("user:")); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}

func userKey(id int64) []byte {
	return []byte(fmt.Sprintf(userKeyFmt, id))
}
