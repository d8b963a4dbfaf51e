package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goboard/internal/apperr"
	"goboard/internal/store"
)

func newArticleService(t *testing.T) (*ArticleService, *ReplyService) {
	t.Helper()
	stores := store.NewMemoryStores()
	return NewArticleService(stores.Articles, stores.Replies),
		NewReplyService(stores.Articles, stores.Replies)
}

func TestArticleService_WriteAssignsWriterAndID(t *testing.T) {
	articles, _ := newArticleService(t)
	ctx := context.Background()

	view, err := articles.Write(ctx, "alice", "hello", "first post")
	require.NoError(t, err)

	assert.NotZero(t, view.ID)
	assert.Equal(t, "alice", view.Writer)
	assert.Equal(t, "hello", view.Title)
	assert.Zero(t, view.ReplyCount)
	assert.Empty(t, view.Replies)
}

func TestArticleService_ListReturnsProjectionsWithoutReplies(t *testing.T) {
	articles, replies := newArticleService(t)
	ctx := context.Background()

	first, err := articles.Write(ctx, "alice", "one", "contents")
	require.NoError(t, err)
	_, err = articles.Write(ctx, "bob", "two", "contents")
	require.NoError(t, err)
	_, err = replies.Write(ctx, "bob", first.ID, "a reply")
	require.NoError(t, err)

	list, err := articles.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Title)
	assert.Equal(t, "two", list[1].Title)
	// The list path never attaches replies.
	assert.Zero(t, list[0].ReplyCount)
	assert.Empty(t, list[0].Replies)
}

func TestArticleService_GetWithRepliesCountsThem(t *testing.T) {
	articles, replies := newArticleService(t)
	ctx := context.Background()

	article, err := articles.Write(ctx, "alice", "title", "contents")
	require.NoError(t, err)

	r1, err := replies.Write(ctx, "bob", article.ID, "first")
	require.NoError(t, err)
	r2, err := replies.Write(ctx, "carol", article.ID, "second")
	require.NoError(t, err)

	view, err := articles.GetWithReplies(ctx, article.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, view.ReplyCount)
	ids := []int64{view.Replies[0].ID, view.Replies[1].ID}
	assert.ElementsMatch(t, []int64{r1.ID, r2.ID}, ids)
}

func TestArticleService_GetWithRepliesMissingArticle(t *testing.T) {
	articles, _ := newArticleService(t)

	_, err := articles.GetWithReplies(context.Background(), 999999)
	assert.ErrorIs(t, err, apperr.ErrArticleNotFound)
}

func TestArticleService_GetForOwner(t *testing.T) {
	articles, _ := newArticleService(t)
	ctx := context.Background()

	article, err := articles.Write(ctx, "writer", "title", "contents")
	require.NoError(t, err)

	_, err = articles.GetForOwner(ctx, "other", article.ID)
	assert.ErrorIs(t, err, apperr.ErrNotArticleOwner)

	view, err := articles.GetForOwner(ctx, "writer", article.ID)
	require.NoError(t, err)
	assert.Equal(t, article.ID, view.ID)
	assert.Equal(t, "title", view.Title)
	assert.Equal(t, "contents", view.Contents)
}

func TestArticleService_UpdateKeepsWriterAndCreatedAt(t *testing.T) {
	articles, _ := newArticleService(t)
	ctx := context.Background()

	article, err := articles.Write(ctx, "alice", "draft", "wip")
	require.NoError(t, err)

	updated, err := articles.Update(ctx, "alice", article.ID, "final", "done")
	require.NoError(t, err)
	assert.Equal(t, article.ID, updated.ID)
	assert.Equal(t, "alice", updated.Writer)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "done", updated.Contents)
	assert.Equal(t, article.CreatedAt, updated.CreatedAt)
}

func TestArticleService_UpdateByNonOwnerFails(t *testing.T) {
	articles, _ := newArticleService(t)
	ctx := context.Background()

	article, err := articles.Write(ctx, "alice", "title", "contents")
	require.NoError(t, err)

	_, err = articles.Update(ctx, "mallory", article.ID, "defaced", "gone")
	assert.ErrorIs(t, err, apperr.ErrNotArticleOwner)

	// The article is untouched.
	view, err := articles.GetWithReplies(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, "title", view.Title)
}

func TestArticleService_DeleteBlockedByForeignReplies(t *testing.T) {
	articles, replies := newArticleService(t)
	ctx := context.Background()

	article, err := articles.Write(ctx, "owner", "title", "contents")
	require.NoError(t, err)

	// The owner's own reply never blocks deletion.
	_, err = replies.Write(ctx, "owner", article.ID, "my addendum")
	require.NoError(t, err)

	foreign, err := replies.Write(ctx, "visitor", article.ID, "wait, a question")
	require.NoError(t, err)

	err = articles.Delete(ctx, "owner", article.ID)
	assert.ErrorIs(t, err, apperr.ErrForeignRepliesPresent)

	// Once the visitor removes their reply the delete goes through.
	require.NoError(t, replies.Delete(ctx, "visitor", foreign.ID))
	require.NoError(t, articles.Delete(ctx, "owner", article.ID))

	_, err = articles.GetWithReplies(ctx, article.ID)
	assert.ErrorIs(t, err, apperr.ErrArticleNotFound)
}

func TestArticleService_DeleteByNonOwnerFails(t *testing.T) {
	articles, _ := newArticleService(t)
	ctx := context.Background()

	article, err := articles.Write(ctx, "owner", "title", "contents")
	require.NoError(t, err)

	err = articles.Delete(ctx, "other", article.ID)
	assert.ErrorIs(t, err, apperr.ErrNotArticleOwner)
}

func TestArticleService_MissingArticleFailsBeforeOwnershipCheck(t *testing.T) {
	articles, _ := newArticleService(t)
	ctx := context.Background()

	_, err := articles.GetForOwner(ctx, "anyone", 999999)
	assert.ErrorIs(t, err, apperr.ErrArticleNotFound)

	_, err = articles.Update(ctx, "anyone", 999999, "title", "contents")
	assert.ErrorIs(t, err, apperr.ErrArticleNotFound)

	err = articles.Delete(ctx, "anyone", 999999)
	assert.ErrorIs(t, err, apperr.ErrArticleNotFound)
}
