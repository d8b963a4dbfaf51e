package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goboard/internal/model"
)

// runBackends runs fn against every backend so the implementations stay
// behaviorally interchangeable. Memory and Badger always run; Postgres
// runs only when POSTGRES_URL points at a reachable database.
func runBackends(t *testing.T, fn func(t *testing.T, s *Stores)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStores())
	})

	t.Run("badger", func(t *testing.T) {
		s, err := NewBadgerStores("")
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})

	t.Run("postgres", func(t *testing.T) {
		url := os.Getenv("POSTGRES_URL")
		if url == "" {
			t.Skip("POSTGRES_URL not set")
		}
		s, err := NewPostgresStores(url)
		require.NoError(t, err)
		defer s.Close()

		ctx := context.Background()
		require.NoError(t, s.Replies.DeleteAll(ctx))
		require.NoError(t, s.Articles.DeleteAll(ctx))
		require.NoError(t, s.Users.DeleteAll(ctx))
		fn(t, s)
	})
}

func TestArticleStore_SaveRoundTrip(t *testing.T) {
	runBackends(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		saved, err := s.Articles.Save(ctx, model.NewArticle("writer", "title", "contents"))
		require.NoError(t, err)
		assert.True(t, saved.Saved(), "first save must assign an id")

		found, err := s.Articles.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "writer", found.Writer)
		assert.Equal(t, "title", found.Title)
		assert.Equal(t, "contents", found.Contents)
		assert.WithinDuration(t, saved.CreatedAt, found.CreatedAt, time.Second)
	})
}

func TestArticleStore_IdentifiersAreDistinct(t *testing.T) {
	runBackends(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		seen := make(map[int64]bool)
		for i := 0; i < 10; i++ {
			saved, err := s.Articles.Save(ctx, model.NewArticle("writer", "title", "contents"))
			require.NoError(t, err)
			assert.False(t, seen[saved.ID], "id %d assigned twice", saved.ID)
			seen[saved.ID] = true
		}
	})
}

func TestArticleStore_UpdateDoesNotDuplicate(t *testing.T) {
	runBackends(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		saved, err := s.Articles.Save(ctx, model.NewArticle("writer", "title", "contents"))
		require.NoError(t, err)

		saved.Update("new title", "new contents")
		_, err = s.Articles.Save(ctx, saved)
		require.NoError(t, err)

		all, err := s.Articles.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1, "saving with an id must update, not insert")

		found, err := s.Articles.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "new title", found.Title)
		assert.Equal(t, "new contents", found.Contents)
		assert.Equal(t, "writer", found.Writer, "writer is immutable")
	})
}

func TestArticleStore_UpdateUnknownIDTouchesNothing(t *testing.T) {
	runBackends(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		ghost := model.NewArticle("writer", "title", "contents")
		ghost.ID = 999999
		_, err := s.Articles.Save(ctx, ghost)
		require.NoError(t, err)

		all, err := s.Articles.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		_, err = s.Articles.FindByID(ctx, 999999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestArticleStore_FindAllInInsertionOrder(t *testing.T) {
	runBackends(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		titles := []string{"first", "second", "third"}
		for _, title := range titles {
			_, err := s.Articles.Save(ctx, model.NewArticle("writer", title, "contents"))
			require.NoError(t, err)
		}

		all, err := s.Articles.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, len(titles))
		for i, title := range titles {
			assert.Equal(t, title, all[i].Title)
		}
	})
}

func TestArticleStore_FindByIDMissing(t *testing.T) {
	runBackends(t, func(t *testing.T, s *Stores) {
		_, err := s.Articles.FindByID(context.Background(), 42)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestArticleStore_Delete(t *testing.T) {
	runBackends(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		saved, err := s.Articles.Save(ctx, model.NewArticle("writer", "title", "contents"))
		require.NoError(t, err)

		require.NoError(t, s.Articles.DeleteByID(ctx, saved.ID))
		_, err = s.Articles.FindByID(ctx, saved.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		// Deleting an id that no longer exists is a no-op.
		assert.NoError(t, s.Articles.DeleteByID(ctx, saved.ID))
	})
}

func TestArticleStore_DeleteAll(t *testing.T) {
	runBackends(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			_, err := s.Articles.Save(ctx, model.NewArticle("writer", "title", "contents"))
			require.NoError(t, err)
		}

		require.NoError(t, s.Articles.DeleteAll(ctx))
		all, err := s.Articles.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestReplyStore_SaveAndFindByArticle(t *testing.T) {
	runBackends(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		article, err := s.Articles.Save(ctx, model.NewArticle("writer", "title", "contents"))
		require.NoError(t, err)
		other, err := s.Articles.Save(ctx, model.NewArticle("writer", "other", "contents"))
		require.NoError(t, err)

		r1, err := s.Replies.Save(ctx, model.NewReply(article.ID, "alice", "first"))
		require.NoError(t, err)
		r2, err := s.Replies.Save(ctx, model.NewReply(article.ID, "bob", "second"))
		require.NoError(t, err)
		_, err = s.Replies.Save(ctx, model.NewReply(other.ID, "carol", "elsewhere"))
		require.NoError(t, err)

		replies, err := s.Replies.FindByArticleID(ctx, article.ID)
		require.NoError(t, err)
		require.Len(t, replies, 2)

		ids := []int64{replies[0].ID, replies[1].ID}
		assert.ElementsMatch(t, []int64{r1.ID, r2.ID}, ids)
	})
}

func TestReplyStore_UpdateContents(t *testing.T) {
	runBackends(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		article, err := s.Articles.Save(ctx, model.NewArticle("writer", "title", "contents"))
		require.NoError(t, err)
		reply, err := s.Replies.Save(ctx, model.NewReply(article.ID, "alice", "draft"))
		require.NoError(t, err)

		reply.Contents = "final"
		_, err = s.Replies.Save(ctx, reply)
		require.NoError(t, err)

		found, err := s.Replies.FindByID(ctx, reply.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", found.Contents)
		assert.Equal(t, "alice", found.Writer)

		replies, err := s.Replies.FindByArticleID(ctx, article.ID)
		require.NoError(t, err)
		assert.Len(t, replies, 1)
	})
}

func TestReplyStore_CountExcludesOwnReplies(t *testing.T) {
	runBackends(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		article, err := s.Articles.Save(ctx, model.NewArticle("owner", "title", "contents"))
		require.NoError(t, err)

		_, err = s.Replies.Save(ctx, model.NewReply(article.ID, "owner", "my own note"))
		require.NoError(t, err)
		_, err = s.Replies.Save(ctx, model.NewReply(article.ID, "visitor", "question"))
		require.NoError(t, err)
		_, err = s.Replies.Save(ctx, model.NewReply(article.ID, "visitor", "another"))
		require.NoError(t, err)

		count, err := s.Replies.CountByArticleIDExcludingWriter(ctx, "owner", article.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		count, err = s.Replies.CountByArticleIDExcludingWriter(ctx, "visitor", article.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = s.Replies.CountByArticleIDExcludingWriter(ctx, "owner", article.ID+1000)
		require.NoError(t, err)
		assert.Equal(t, 0, count, "count on an article without replies is zero")
	})
}

func TestUserStore_SaveAndFindByUserID(t *testing.T) {
	runBackends(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		saved, err := s.Users.Save(ctx, model.NewUser("alice", "secret", "Alice", "alice@example.com"))
		require.NoError(t, err)
		assert.True(t, saved.Saved())

		found, err := s.Users.FindByUserID(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, found.ID)
		assert.Equal(t, "Alice", found.Name)

		_, err = s.Users.FindByUserID(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserStore_UpdateProfile(t *testing.T) {
	runBackends(t, func(t *testing.T, s *Stores) {
		ctx := context.Background()

		saved, err := s.Users.Save(ctx, model.NewUser("alice", "secret", "Alice", "alice@example.com"))
		require.NoError(t, err)

		saved.Name = "Alice B."
		saved.Email = "ab@example.com"
		_, err = s.Users.Save(ctx, saved)
		require.NoError(t, err)

		all, err := s.Users.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Alice B.", all[0].Name)
		assert.Equal(t, "ab@example.com", all[0].Email)
	})
}
