// Package apperr defines the business error taxonomy shared by the service
// layer and the HTTP transport. Services return these values directly; the
// transport maps them to a status code and never sees raw storage errors.
package apperr

import (
	"errors"
	"net/http"
)

// Code identifies a failure kind independently of its message.
type Code string

const (
	CodeUserNotFound          Code = "USER_NOT_FOUND"
	CodeDuplicateUser         Code = "DUPLICATE_USER"
	CodeIncorrectUser         Code = "INCORRECT_USER"
	CodeSessionNotFound       Code = "SESSION_NOT_FOUND"
	CodeArticleNotFound       Code = "ARTICLE_NOT_FOUND"
	CodeReplyNotFound         Code = "REPLY_NOT_FOUND"
	CodeNotArticleOwner       Code = "NOT_ARTICLE_OWNER"
	CodeNotReplyOwner         Code = "NOT_REPLY_OWNER"
	CodeForeignRepliesPresent Code = "FOREIGN_REPLIES_PRESENT"
)

// Error is a business rule failure. The singletons below are compared by
// pointer, so errors.Is works on them even through fmt.Errorf wrapping.
type Error struct {
	Code    Code
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus returns the transport mapping for the error.
func (e *Error) HTTPStatus() int {
	return e.Status
}

var (
	ErrUserNotFound          = &Error{CodeUserNotFound, http.StatusNotFound, "no such user"}
	ErrDuplicateUser         = &Error{CodeDuplicateUser, http.StatusConflict, "user id already registered"}
	ErrIncorrectUser         = &Error{CodeIncorrectUser, http.StatusConflict, "user id or password does not match"}
	ErrSessionNotFound       = &Error{CodeSessionNotFound, http.StatusUnauthorized, "no such login session"}
	ErrArticleNotFound       = &Error{CodeArticleNotFound, http.StatusNotFound, "no such article"}
	ErrReplyNotFound         = &Error{CodeReplyNotFound, http.StatusNotFound, "no such reply"}
	ErrNotArticleOwner       = &Error{CodeNotArticleOwner, http.StatusForbidden, "cannot modify another user's article"}
	ErrNotReplyOwner         = &Error{CodeNotReplyOwner, http.StatusForbidden, "cannot modify another user's reply"}
	ErrForeignRepliesPresent = &Error{CodeForeignRepliesPresent, http.StatusForbidden, "cannot delete an article that has another user's replies"}
)

// From extracts the business error wrapped in err, or nil if err carries
// none.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
