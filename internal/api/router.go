package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/studyhall/internal/api/middleware"
	"github.com/phrazzld/studyhall/internal/query"
	"github.com/phrazzld/studyhall/internal/service"
	"github.com/phrazzld/studyhall/internal/store"
)

// Deps holds everything the HTTP layer needs.
type Deps struct {
	Library    *store.Library
	Queries    *query.Engine
	Review     *service.ReviewService
	Tutor      *service.TutorService
	Generation *service.GenerationService
	Logger     *slog.Logger
}

// NewRouter builds the HTTP router with all routes and middleware.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(deps.Logger))

	materials := NewMaterialHandler(deps.Library, deps.Queries, deps.Generation, deps.Logger)
	cards := NewCardHandler(deps.Library, deps.Queries, deps.Review, deps.Logger)
	questions := NewQuestionHandler(deps.Library, deps.Logger)
	notes := NewNoteHandler(deps.Library, deps.Logger)
	tutor := NewTutorHandler(deps.Library, deps.Tutor, deps.Logger)
	users := NewUserHandler(deps.Library, deps.Queries, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/materials", func(r chi.Router) {
			r.Get("/", materials.List)
			r.Post("/", materials.Create)
			r.Get("/{id}", materials.Get)
			r.Put("/{id}", materials.Update)
			r.Delete("/{id}", materials.Delete)
			r.Post("/{id}/generate", materials.Generate)
		})

		r.Route("/flashcards", func(r chi.Router) {
			r.Get("/", cards.List)
			r.Post("/", cards.Create)
			r.Get("/due", cards.Due)
			r.Get("/decks", cards.Decks)
			r.Get("/starred", cards.Starred)
			r.Get("/next", cards.Next)
			r.Get("/{id}", cards.Get)
			r.Put("/{id}", cards.Update)
			r.Delete("/{id}", cards.Delete)
			r.Post("/{id}/review", cards.Review)
			r.Post("/{id}/postpone", cards.Postpone)
			r.Put("/{id}/star", cards.Star)
		})

		r.Route("/questions", func(r chi.Router) {
			r.Get("/", questions.List)
			r.Post("/", questions.Create)
			r.Get("/{id}", questions.Get)
			r.Put("/{id}", questions.Update)
			r.Delete("/{id}", questions.Delete)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", notes.List)
			r.Post("/", notes.Create)
			r.Get("/{id}", notes.Get)
			r.Put("/{id}", notes.Update)
			r.Delete("/{id}", notes.Delete)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", tutor.List)
			r.Post("/", tutor.Create)
			r.Get("/{id}", tutor.Get)
			r.Delete("/{id}", tutor.Delete)
			r.Post("/{id}/messages", tutor.SendMessage)
			r.Post("/{id}/clear", tutor.Clear)
			r.Put("/{id}/material", tutor.Relink)
			r.Put("/{id}/mode", tutor.SetMode)
		})

		r.Get("/user", users.Get)
		r.Put("/user", users.Update)
		r.Get("/stats", users.Stats)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			deps.Logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
