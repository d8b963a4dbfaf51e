// Package web is the HTTP transport for the board. It owns request
// decoding, the session cookie, and the mapping of business errors to
// status codes; every rule about who may do what lives in the service
// layer.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"goboard/internal/apperr"
	"goboard/internal/service"
	"goboard/internal/session"
)

const sessionCookie = "board_session"

type ctxKey int8

const ctxKeyUserID ctxKey = iota

type Server struct {
	articles *service.ArticleService
	replies  *service.ReplyService
	users    *service.UserService
	sessions *session.Manager
	logger   *zap.Logger
	router   *mux.Router
	server   *http.Server
}

func NewServer(articles *service.ArticleService, replies *service.ReplyService,
	users *service.UserService, sessions *session.Manager, logger *zap.Logger) *Server {
	s := &Server{
		articles: articles,
		replies:  replies,
		users:    users,
		sessions: sessions,
		logger:   logger,
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/users", s.handleRegister).Methods("POST")
	api.HandleFunc("/users", s.handleListUsers).Methods("GET")
	api.HandleFunc("/users/{userId}", s.handleProfile).Methods("GET")
	api.HandleFunc("/login", s.handleLogin).Methods("POST")
	api.HandleFunc("/logout", s.withUser(s.handleLogout)).Methods("POST")
	api.HandleFunc("/me", s.withUser(s.handleUpdateProfile)).Methods("PUT")

	api.HandleFunc("/articles", s.handleListArticles).Methods("GET")
	api.HandleFunc("/articles", s.withUser(s.handleWriteArticle)).Methods("POST")
	api.HandleFunc("/articles/{id:[0-9]+}", s.handleGetArticle).Methods("GET")
	api.HandleFunc("/articles/{id:[0-9]+}/edit", s.withUser(s.handleGetArticleForOwner)).Methods("GET")
	api.HandleFunc("/articles/{id:[0-9]+}", s.withUser(s.handleUpdateArticle)).Methods("PUT")
	api.HandleFunc("/articles/{id:[0-9]+}", s.withUser(s.handleDeleteArticle)).Methods("DELETE")

	api.HandleFunc("/articles/{id:[0-9]+}/replies", s.withUser(s.handleWriteReply)).Methods("POST")
	api.HandleFunc("/replies/{id:[0-9]+}", s.withUser(s.handleUpdateReply)).Methods("PUT")
	api.HandleFunc("/replies/{id:[0-9]+}", s.withUser(s.handleDeleteReply)).Methods("DELETE")
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start launches the HTTP server.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("Web server listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// withUser resolves the session cookie to a user id and stashes it in the
// request context. Handlers behind it never see an unauthenticated
// request.
func (s *Server) withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			s.writeError(w, apperr.ErrSessionNotFound)
			return
		}

		userID, err := s.sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			s.writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, userID)
		next(w, r.WithContext(ctx))
	}
}

func currentUser(r *http.Request) string {
	userID, _ := r.Context().Value(ctxKeyUserID).(string)
	return userID
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

type errorBody struct {
	Error string      `json:"error"`
	Code  apperr.Code `json:"code,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if e := apperr.From(err); e != nil {
		s.writeJSON(w, e.HTTPStatus(), errorBody{Error: e.Message, Code: e.Code})
		return
	}
	s.logger.Error("Request failed", zap.Error(err))
	s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
