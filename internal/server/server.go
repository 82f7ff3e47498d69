package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/internal/ai"
	"github.com/kpauljoseph/ankiforge/internal/workflow"
	"github.com/kpauljoseph/ankiforge/pkg/logger"
)

const (
	DefaultMaxUploadBytes = 32 << 20
	shutdownTimeout       = 10 * time.Second
)

// AnkiService is the AnkiConnect surface the API exposes.
type AnkiService interface {
	workflow.NoteAdder
	DeckNames(ctx context.Context) ([]string, error)
	ModelNames(ctx context.Context) ([]string, error)
	ModelFieldNames(ctx context.Context, modelName string) ([]string, error)
	CheckConnection(ctx context.Context) error
}

type Option func(*Server)

func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithGenerateDefaults sets the options used where a request leaves them out.
func WithGenerateDefaults(opts ai.GenerateOptions) Option {
	return func(s *Server) {
		s.defaults = opts
	}
}

func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// Server is the local HTTP API in front of the generator and AnkiConnect.
type Server struct {
	generator      *workflow.Generator
	anki           AnkiService
	submitter      *workflow.Submitter
	defaults       ai.GenerateOptions
	allowedOrigins []string
	maxUploadBytes int64
	logger         *logger.Logger
}

func New(generator *workflow.Generator, ankiService AnkiService, log *logger.Logger, opts ...Option) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		generator:      generator,
		anki:           ankiService,
		submitter:      workflow.NewSubmitter(ankiService, log),
		maxUploadBytes: DefaultMaxUploadBytes,
		logger:         log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sources/parse", s.parseSource)
		r.Post("/cards/generate", s.generateCards)

		r.Route("/anki", func(r chi.Router) {
			r.Get("/status", s.ankiStatus)
			r.Get("/decks", s.listDecks)
			r.Get("/models", s.listModels)
			r.Get("/models/{model}/fields", s.modelFields)
			r.Post("/notes", s.addNotes)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrapf(err, "server: listen on %s", addr)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("%s %s -> %d (%s) [%s]",
			r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond),
			chimiddleware.GetReqID(r.Context()))
	})
}
