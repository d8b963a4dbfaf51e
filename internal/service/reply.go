package service

import (
	"context"
	"errors"
	"fmt"

	"goboard/internal/apperr"
	"goboard/internal/model"
	"goboard/internal/store"
)

// ReplyService enforces ownership rules for replies, mirroring the
// article rules: only the writer may change or remove a reply.
type ReplyService struct {
	articles store.ArticleStore
	replies  store.ReplyStore
}

func NewReplyService(articles store.ArticleStore, replies store.ReplyStore) *ReplyService {
	return &ReplyService{articles: articles, replies: replies}
}

// Write attaches a new reply by userID to the given article.
func (s *ReplyService) Write(ctx context.Context, userID string, articleID int64, contents string) (ReplyView, error) {
	if _, err := s.articles.FindByID(ctx, articleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ReplyView{}, apperr.ErrArticleNotFound
		}
		return ReplyView{}, fmt.Errorf("get article: %w", err)
	}

	reply, err := s.replies.Save(ctx, model.NewReply(articleID, userID, contents))
	if err != nil {
		return ReplyView{}, fmt.Errorf("write reply: %w", err)
	}
	return replyView(reply), nil
}

// Update overwrites the reply's contents, writer only.
func (s *ReplyService) Update(ctx context.Context, userID string, replyID int64, contents string) (ReplyView, error) {
	reply, err := s.findOwned(ctx, userID, replyID)
	if err != nil {
		return ReplyView{}, err
	}

	reply.Contents = contents
	saved, err := s.replies.Save(ctx, reply)
	if err != nil {
		return ReplyView{}, fmt.Errorf("update reply: %w", err)
	}
	return replyView(saved), nil
}

// Delete removes the reply, writer only.
func (s *ReplyService) Delete(ctx context.Context, userID string, replyID int64) error {
	if _, err := s.findOwned(ctx, userID, replyID); err != nil {
		return err
	}
	if err := s.replies.DeleteByID(ctx, replyID); err != nil {
		return fmt.Errorf("delete reply: %w", err)
	}
	return nil
}

func (s *ReplyService) findOwned(ctx context.Context, userID string, replyID int64) (model.Reply, error) {
	reply, err := s.replies.FindByID(ctx, replyID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Reply{}, apperr.ErrReplyNotFound
	}
	if err != nil {
		return model.Reply{}, fmt.Errorf("get reply: %w", err)
	}

	if !reply.WrittenBy(userID) {
		return model.Reply{}, apperr.ErrNotReplyOwner
	}
	return reply, nil
}
