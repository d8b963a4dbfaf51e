package model

import (
	"time"
)

// Article is a question posted to the board. An ID of zero means the
// article has not been persisted yet; the store assigns the ID on first
// save and it never changes afterwards.
type Article struct {
	ID        int64     `json:"id"`
	Writer    string    `json:"writer"`
	Title     string    `json:"title"`
	Contents  string    `json:"contents"`
	CreatedAt time.Time `json:"created_at"`
}

// NewArticle creates an unsaved Article authored by writer.
func NewArticle(writer, title, contents string) Article {
	return Article{
		Writer:    writer,
		Title:     title,
		Contents:  contents,
		CreatedAt: time.Now(),
	}
}

// Saved reports whether the article has been assigned an identifier.
func (a *Article) Saved() bool {
	return a.ID != 0
}

// SameAs compares articles by identity. Two articles are the same entity
// when both carry the same nonzero ID; an unsaved article equals nothing.
func (a *Article) SameAs(other *Article) bool {
	return a.ID != 0 && other != nil && a.ID == other.ID
}

// WrittenBy reports whether userID authored the article.
func (a *Article) WrittenBy(userID string) bool {
	return a.Writer == userID
}

// Update overwrites the mutable fields. ID, Writer and CreatedAt stay as
// assigned at creation.
func (a *Article) Update(title, contents string) {
	a.Title = title
	a.Contents = contents
}

// Reply is a comment attached to exactly one Article. Same zero-ID rule
// as Article.
type Reply struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	Writer    string    `json:"writer"`
	Contents  string    `json:"contents"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReply creates an unsaved Reply on the given article.
func NewReply(articleID int64, writer, contents string) Reply {
	return Reply{
		ArticleID: articleID,
		Writer:    writer,
		Contents:  contents,
		CreatedAt: time.Now(),
	}
}

// Saved reports whether the reply has been assigned an identifier.
func (r *Reply) Saved() bool {
	return r.ID != 0
}

// WrittenBy reports whether userID authored the reply.
func (r *Reply) WrittenBy(userID string) bool {
	return r.Writer == userID
}
