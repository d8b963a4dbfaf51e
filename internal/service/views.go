package service

import (
	"time"

	"goboard/internal/model"
)

// ArticleView is the read projection handed to callers. Replies and
// ReplyCount are filled only by GetWithReplies; list and single-entity
// paths leave them empty.
type ArticleView struct {
	ID         int64       `json:"id"`
	Writer     string      `json:"writer"`
	Title      string      `json:"title"`
	Contents   string      `json:"contents"`
	CreatedAt  time.Time   `json:"created_at"`
	ReplyCount int         `json:"reply_count"`
	Replies    []ReplyView `json:"replies,omitempty"`
}

// ReplyView is the read projection of a Reply.
type ReplyView struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	Writer    string    `json:"writer"`
	Contents  string    `json:"contents"`
	CreatedAt time.Time `json:"created_at"`
}

// UserView is the read projection of a User; the password never leaves
// the service layer.
type UserView struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func articleView(a model.Article) ArticleView {
	return ArticleView{
		ID:        a.ID,
		Writer:    a.Writer,
		Title:     a.Title,
		Contents:  a.Contents,
		CreatedAt: a.CreatedAt,
	}
}

func articleViewWithReplies(a model.Article, replies []model.Reply) ArticleView {
	view := articleView(a)
	view.Replies = make([]ReplyView, 0, len(replies))
	for _, r := range replies {
		view.Replies = append(view.Replies, replyView(r))
	}
	view.ReplyCount = len(view.Replies)
	return view
}

func replyView(r model.Reply) ReplyView {
	return ReplyView{
		ID:        r.ID,
		ArticleID: r.ArticleID,
		Writer:    r.Writer,
		Contents:  r.Contents,
		CreatedAt: r.CreatedAt,
	}
}

func userView(u model.User) UserView {
	return UserView{
		UserID: u.UserID,
		Name:   u.Name,
		Email:  u.Email,
	}
}
