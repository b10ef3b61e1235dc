package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rbhz/mw-vocabulary/app/db"
	"github.com/rbhz/mw-vocabulary/app/lookup"
)

type ctxKey string

const ctxUserIDKey ctxKey = "userID"

// Vocabulary changes user vocabulary words one at a time per word
type Vocabulary interface {
	Update(user db.UserID, word string, update func(item *db.VocabularyEntry, found bool)) (db.VocabularyEntry, error)
	Delete(user db.UserID, word string) error
}

// Dictionary looks words up and overrides cached entries
type Dictionary interface {
	Lookup(ctx context.Context, word string) (lookup.Result, error)
	Store(word string, data []byte) (lookup.Result, error)
}

type Server struct {
	storage db.Storage
	router  chi.Router
}

func (s *Server) Run(port int) error {
	return http.ListenAndServe(fmt.Sprintf(":%d", port), s.router)
}

func (s *Server) setJsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func NewServer(storage db.Storage, dictionary Dictionary, vocabulary Vocabulary, tgToken string, jwtSecret string) *Server {
	s := &Server{storage: storage}
	vocab := vocabularyService{storage: storage, dictionary: dictionary, vocabulary: vocabulary, now: time.Now}
	auth := authService{storage: storage, telegramToken: tgToken, jwtSecret: []byte(jwtSecret), now: time.Now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.setJsonContentType)
		r.Route("/auth", func(r chi.Router) {
			r.Get("/telegram", auth.TelegramRedirectHandler)
		})
		r.Route("/dictionary", func(r chi.Router) {
			r.Use(auth.UserCtx)
			r.Get("/", vocab.GetVocabulary)
			r.Get("/word/{word}", vocab.GetWord)
			r.Post("/word/{word}", vocab.SaveWord)
			r.Delete("/word/{word}", vocab.DeleteWord)
			r.Put("/cache/{word}", vocab.UpdateCached)
		})
	})

	s.router = r
	return s
}
