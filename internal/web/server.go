package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fluggy/internal/back"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/leonelquinteros/gotext"
	"go.uber.org/zap"
)

//go:embed templates static locales
var assets embed.FS

// LeaderboardSource provides the ordered users of a guild.
type LeaderboardSource interface {
	GetLeaderboardEntries(ctx context.Context, guildID string) ([]back.User, error)
}

type ServerOptions struct {
	Address string
}

type Server struct {
	http      *http.Server
	source    LeaderboardSource
	log       *zap.Logger
	templates map[string]*template.Template
	locales   map[string]*gotext.Po
}

func NewServer(source LeaderboardSource, opts ServerOptions, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		source: source,
		log:    logger.Named("web"),
	}

	var err error
	s.locales, err = loadLocales(assets)
	if err != nil {
		return nil, fmt.Errorf("unable to load locales: %w", err)
	}

	s.templates, err = s.loadTemplates(assets)
	if err != nil {
		return nil, fmt.Errorf("unable to load templates: %w", err)
	}

	s.http = &http.Server{
		Addr:         opts.Address,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s, nil
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.localeDetector)

	r.Get("/", noContent)
	r.Get("/leaderboard", s.getLeaderboard)

	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err) // embedded, cannot happen
	}
	r.Get("/_/*", s.staticHandler(http.StripPrefix("/_/", http.FileServer(http.FS(static)))))

	return r
}

// Handler returns the root handler of the server.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) staticHandler(h http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.cache(w, "public", 24*time.Hour)
		h.ServeHTTP(w, r)
	}
}

// Serve runs the HTTP server until done is closed. It returns early with an
// error if the listener fails.
func (s *Server) Serve(done <-chan struct{}) error {
	s.log.Info("starting HTTP server", zap.String("address", s.http.Addr))

	errc := make(chan error, 1)
	go func() {
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("webserver crashed: %w", err)
	case <-done:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Warn("unable to shutdown webserver", zap.Error(err))
	}

	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webserver crashed: %w", err)
	}
	s.log.Info("HTTP server closed")

	return nil
}

func (s *Server) response(
	w http.ResponseWriter,
	r *http.Request,
	code int,
	name string,
	data interface{},
) {
	tpl, ok := s.templates[name]
	if !ok {
		s.error(w, r, fmt.Errorf("unknown template %s", name), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.error(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)

	if _, err := buf.WriteTo(w); err != nil {
		s.log.Warn("unable to send response", zap.Error(err))
	}
}

func (s *Server) error(w http.ResponseWriter, r *http.Request, err error, code int) {
	if err != nil {
		s.log.Error(
			"request failed",
			zap.Error(err),
			zap.Int("status", code),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	}

	http.Error(w, http.StatusText(code), code)
}

func (s *Server) cache(w http.ResponseWriter, scope string, d time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("%s,max-age=%d", scope, d/time.Second))
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			s.log.Info(
				"request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
