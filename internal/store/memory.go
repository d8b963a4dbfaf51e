package store

import (
	"context"
	"sort"
	"sync"

	"goboard/internal/model"
)

// NewMemoryStores returns stores backed by in-process maps. Each call
// returns fully independent stores with their own ID counters, so test
// instances never interfere. One mutex per store serializes mutations
// against readers; operations are short and never block while holding it.
func NewMemoryStores() *Stores {
	return &Stores{
		Articles: &memoryArticleStore{articles: make(map[int64]model.Article)},
		Replies:  &memoryReplyStore{replies: make(map[int64]model.Reply)},
		Users:    &memoryUserStore{users: make(map[int64]model.User)},
	}
}

type memoryArticleStore struct {
	mu       sync.RWMutex
	articles map[int64]model.Article
	nextID   int64
}

func (s *memoryArticleStore) Save(ctx context.Context, article model.Article) (model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !article.Saved() {
		s.nextID++
		article.ID = s.nextID
		s.articles[article.ID] = article
		return article, nil
	}

	// Update path: overwrite mutable fields only when the row exists,
	// matching the zero-rows-updated behavior of the SQL backend.
	if stored, ok := s.articles[article.ID]; ok {
		stored.Update(article.Title, article.Contents)
		s.articles[article.ID] = stored
	}
	return article, nil
}

func (s *memoryArticleStore) FindAll(ctx context.Context) ([]model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	articles := make([]model.Article, 0, len(s.articles))
	for _, a := range s.articles {
		articles = append(articles, a)
	}
	// IDs are assigned monotonically, so ID order is insertion order.
	sort.Slice(articles, func(i, j int) bool { return articles[i].ID < articles[j].ID })
	return articles, nil
}

func (s *memoryArticleStore) FindByID(ctx context.Context, id int64) (model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	article, ok := s.articles[id]
	if !ok {
		return model.Article{}, ErrNotFound
	}
	return article, nil
}

func (s *memoryArticleStore) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.articles, id)
	return nil
}

func (s *memoryArticleStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.articles = make(map[int64]model.Article)
	return nil
}

type memoryReplyStore struct {
	mu      sync.RWMutex
	replies map[int64]model.Reply
	nextID  int64
}

func (s *memoryReplyStore) Save(ctx context.Context, reply model.Reply) (model.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !reply.Saved() {
		s.nextID++
		reply.ID = s.nextID
		s.replies[reply.ID] = reply
		return reply, nil
	}

	if stored, ok := s.replies[reply.ID]; ok {
		stored.Contents = reply.Contents
		s.replies[reply.ID] = stored
	}
	return reply, nil
}

func (s *memoryReplyStore) FindByID(ctx context.Context, id int64) (model.Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reply, ok := s.replies[id]
	if !ok {
		return model.Reply{}, ErrNotFound
	}
	return reply, nil
}

func (s *memoryReplyStore) FindByArticleID(ctx context.Context, articleID int64) ([]model.Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	replies := make([]model.Reply, 0)
	for _, r := range s.replies {
		if r.ArticleID == articleID {
			replies = append(replies, r)
		}
	}
	sort.Slice(replies, func(i, j int) bool { return replies[i].ID < replies[j].ID })
	return replies, nil
}

func (s *memoryReplyStore) CountByArticleIDExcludingWriter(ctx context.Context, userID string, articleID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.replies {
		if r.ArticleID == articleID && !r.WrittenBy(userID) {
			count++
		}
	}
	return count, nil
}

func (s *memoryReplyStore) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.replies, id)
	return nil
}

func (s *memoryReplyStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replies = make(map[int64]model.Reply)
	return nil
}

type memoryUserStore struct {
	mu     sync.RWMutex
	users  map[int64]model.User
	nextID int64
}

func (s *memoryUserStore) Save(ctx context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !user.Saved() {
		s.nextID++
		user.ID = s.nextID
		s.users[user.ID] = user
		return user, nil
	}

	if _, ok := s.users[user.ID]; ok {
		s.users[user.ID] = user
	}
	return user, nil
}

func (s *memoryUserStore) FindAll(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *memoryUserStore) FindByUserID(ctx context.Context, userID string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.UserID == userID {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (s *memoryUserStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[int64]model.User)
	return nil
}
