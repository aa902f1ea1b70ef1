package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kevinaaaquil/shelf/middleware"
	"github.com/kevinaaaquil/shelf/service"
	"github.com/kevinaaaquil/shelf/store"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	DB             *store.DB
	Library        *service.LibraryService
	Tokens         TokenIssuer
	Verifier       middleware.IdentityVerifier
	Covers         CoverStore
	Catalog        BookCatalog
	MaxUploadBytes int64
	CORSOrigins    []string
	Now            func() time.Time
}

func NewRouter(d Deps) http.Handler {
	issues := &IssuesHandler{Issues: d.DB.Issues(), Now: d.Now}
	users := &UsersHandler{Users: d.DB.Users(), Now: d.Now}
	books := &BooksHandler{Books: d.DB.Books(), Covers: d.Covers, Catalog: d.Catalog, MaxBytes: d.MaxUploadBytes, Now: d.Now}
	genres := &GenresHandler{Genres: d.DB.Genres(), Now: d.Now}
	library := &LibraryHandler{Service: d.Library}
	reviews := &ReviewsHandler{Service: d.Library}
	auth := &AuthHandler{Users: d.DB.Users(), Tokens: d.Tokens}
	health := &HealthHandler{Store: d.DB}

	r := chi.NewRouter()
	r.Use(middleware.CORS(d.CORSOrigins...))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/", Root)
	r.Get("/health", health.Status)
	r.Post("/jwt", auth.Token)

	r.Post("/all-issues", issues.Create)
	r.Post("/issues", issues.Create)
	r.Get("/all-issues", issues.List)
	r.Get("/all-issues/{id}", issues.Get)
	r.Get("/issues/{id}", issues.Get)
	r.Get("/recent-issues", issues.Recent)
	r.Get("/my-issues", issues.Mine)
	r.Put("/my-issues/{id}", issues.Update)
	r.Delete("/my-issues/{id}", issues.Delete)

	r.Post("/users", users.Create)
	r.Get("/users", users.List)
	r.Get("/users/{id}", users.Get)
	r.Patch("/users/{id}", users.Update)

	r.Post("/books", books.Create)
	r.Get("/books", books.List)
	r.Get("/recent-books", books.Recent)
	r.Get("/books/lookup", books.Lookup)
	r.Get("/books/{id}", books.Get)
	r.Patch("/books/{id}", books.Update)
	r.Delete("/books/{id}", books.Delete)
	r.Post("/books/{id}/cover", books.UploadCover)

	r.Post("/genres", genres.Create)
	r.Get("/genres", genres.List)
	r.Get("/genres/{id}", genres.Get)
	r.Delete("/genres/{id}", genres.Delete)

	r.Get("/reviews", reviews.List)

	// Routes acting on behalf of a verified user
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(d.Verifier))
		r.Post("/my-library", library.Add)
		r.Get("/my-library", library.List)
		r.Patch("/my-library/{id}", library.Update)
		r.Delete("/my-library/{id}", library.Delete)
		r.Post("/reviews", reviews.Create)
	})

	return r
}
