// Package service holds the business rules of the board. Services are the
// only place cross-entity rules live; they re-check every rule on every
// call because store state can change between calls.
package service

import (
	"context"
	"errors"
	"fmt"

	"goboard/internal/apperr"
	"goboard/internal/model"
	"goboard/internal/store"
)

// ArticleService enforces ownership and deletability rules for articles.
// The caller supplies the requesting user's id on every mutating call;
// resolving who that user is belongs to the transport layer.
type ArticleService struct {
	articles store.ArticleStore
	replies  store.ReplyStore
}

func NewArticleService(articles store.ArticleStore, replies store.ReplyStore) *ArticleService {
	return &ArticleService{articles: articles, replies: replies}
}

// Write posts a new article authored by userID and returns it with its
// generated identifier.
func (s *ArticleService) Write(ctx context.Context, userID, title, contents string) (ArticleView, error) {
	article, err := s.articles.Save(ctx, model.NewArticle(userID, title, contents))
	if err != nil {
		return ArticleView{}, fmt.Errorf("write article: %w", err)
	}
	return articleView(article), nil
}

// List returns every article, oldest first, without replies attached.
func (s *ArticleService) List(ctx context.Context) ([]ArticleView, error) {
	articles, err := s.articles.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	views := make([]ArticleView, 0, len(articles))
	for _, a := range articles {
		views = append(views, articleView(a))
	}
	return views, nil
}

// GetWithReplies returns one article together with all its replies;
// ReplyCount equals the number of replies fetched.
func (s *ArticleService) GetWithReplies(ctx context.Context, articleID int64) (ArticleView, error) {
	article, err := s.articles.FindByID(ctx, articleID)
	if errors.Is(err, store.ErrNotFound) {
		return ArticleView{}, apperr.ErrArticleNotFound
	}
	if err != nil {
		return ArticleView{}, fmt.Errorf("get article: %w", err)
	}

	replies, err := s.replies.FindByArticleID(ctx, articleID)
	if err != nil {
		return ArticleView{}, fmt.Errorf("get article replies: %w", err)
	}
	return articleViewWithReplies(article, replies), nil
}

// GetForOwner returns the article only when userID wrote it. Update forms
// use it to decide whether to render at all.
func (s *ArticleService) GetForOwner(ctx context.Context, userID string, articleID int64) (ArticleView, error) {
	article, err := s.findOwned(ctx, userID, articleID)
	if err != nil {
		return ArticleView{}, err
	}
	return articleView(article), nil
}

// Update overwrites the article's title and contents. Only the writer may
// update; the article keeps its id, writer and creation time.
func (s *ArticleService) Update(ctx context.Context, userID string, articleID int64, title, contents string) (ArticleView, error) {
	article, err := s.findOwned(ctx, userID, articleID)
	if err != nil {
		return ArticleView{}, err
	}

	article.Update(title, contents)
	saved, err := s.articles.Save(ctx, article)
	if err != nil {
		return ArticleView{}, fmt.Errorf("update article: %w", err)
	}
	return articleView(saved), nil
}

// Delete removes the article. Only the writer may delete, and only while
// no other user has a reply on it; the writer's own replies do not block
// deletion. The count and the delete are separate store calls, so a reply
// arriving in between can slip past the check.
func (s *ArticleService) Delete(ctx context.Context, userID string, articleID int64) error {
	if _, err := s.findOwned(ctx, userID, articleID); err != nil {
		return err
	}

	foreign, err := s.replies.CountByArticleIDExcludingWriter(ctx, userID, articleID)
	if err != nil {
		return fmt.Errorf("count foreign replies: %w", err)
	}
	if foreign > 0 {
		return apperr.ErrForeignRepliesPresent
	}

	if err := s.articles.DeleteByID(ctx, articleID); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// findOwned fetches the article and verifies userID wrote it. The check
// is a plain writer comparison; whether userID names a live account is
// settled before the request reaches this layer.
func (s *ArticleService) findOwned(ctx context.Context, userID string, articleID int64) (model.Article, error) {
	article, err := s.articles.FindByID(ctx, articleID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Article{}, apperr.ErrArticleNotFound
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("get article: %w", err)
	}

	if !article.WrittenBy(userID) {
		return model.Article{}, apperr.ErrNotArticleOwner
	}
	return article, nil
}
