// Package http exposes the onboarding wizard and the public directory over
// a JSON API. Browser-style flows are first class: step submissions answer
// with 303 redirects and validation errors echo the submitted values.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vicinitylabs/vicinity/internal/logging"
	"github.com/vicinitylabs/vicinity/pkg/directory"
	"github.com/vicinitylabs/vicinity/pkg/domain"
	"github.com/vicinitylabs/vicinity/pkg/session"
	"github.com/vicinitylabs/vicinity/pkg/wizard"
)

// SessionCookie carries the opaque session identifier; it is created on the
// first wizard request.
const SessionCookie = "vicinity_session"

type contextKey string

const sessionIDKey contextKey = "session_id"

// Server wires the wizard engine and the directory services into handlers.
type Server struct {
	engine     *wizard.Engine
	sessions   *session.Manager
	directory  *directory.Service
	moderation *directory.Moderation
	logger     *slog.Logger
	registry   prometheus.Gatherer
	version    string
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithServerLogger sets the request logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsGatherer exposes the given registry at /metrics.
func WithMetricsGatherer(g prometheus.Gatherer) ServerOption {
	return func(s *Server) {
		s.registry = g
	}
}

// WithVersion reports the build version at /info.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates the HTTP server facade.
func NewServer(engine *wizard.Engine, sessions *session.Manager, dir *directory.Service, mod *directory.Moderation, opts ...ServerOption) *Server {
	s := &Server{
		engine:     engine,
		sessions:   sessions,
		directory:  dir,
		moderation: mod,
		logger:     logging.NewNop(),
		version:    "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/info", s.handleInfo)
	r.Get("/openapi.yaml", s.handleOpenAPISpec)
	r.Get("/docs", s.handleDocs)
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Get("/onboarding/step/{n}", s.handleEnterStep)
		r.Post("/onboarding/step/{n}", s.handleSubmitStep)
		r.Get("/onboarding/review", s.handleReview)
		r.Post("/onboarding/submit", s.handleSubmitFinal)
	})

	r.Get("/listings", s.handleListListings)
	r.Get("/listings/{slug}", s.handleGetListing)

	r.Route("/admin/listings", func(r chi.Router) {
		r.Get("/pending", s.handlePendingQueue)
		r.Post("/{id}/approve", s.moderationAction(s.moderation.Approve))
		r.Post("/{id}/reject", s.moderationAction(s.moderation.Reject))
		r.Post("/{id}/archive", s.moderationAction(s.moderation.Archive))
		r.Post("/{id}/feature", s.flagAction(s.moderation.SetFeatured, true))
		r.Post("/{id}/unfeature", s.flagAction(s.moderation.SetFeatured, false))
		r.Post("/{id}/verify", s.flagAction(s.moderation.SetVerified, true))
	})

	return r
}

// withSession assigns a session cookie on first contact and threads the
// identifier through the request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		} else {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionIDKey).(string)
	return id
}

// --- Wizard handlers ---

func (s *Server) handleEnterStep(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	sid := sessionID(r)
	sess, err := s.sessions.LoadOrStart(r.Context(), sid)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	view, err := s.engine.EnterStep(r.Context(), sess, n)
	if err != nil {
		s.wizardError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSubmitStep(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	submitted, err := parseFields(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sid := sessionID(r)
	var outcome *wizard.SubmitOutcome
	err = s.sessions.WithLock(r.Context(), sid, func(ctx context.Context) error {
		sess, err := s.sessions.Store().Load(ctx, sid)
		if errors.Is(err, domain.ErrSessionNotFound) {
			sess = domain.NewWizardSession(sid)
		} else if err != nil {
			return err
		}

		outcome, err = s.engine.SubmitStep(ctx, sess, n, submitted)
		if err != nil {
			return err
		}
		if outcome.Errors != nil {
			// Rejected submissions leave the session untouched; no save.
			return nil
		}
		return s.sessions.Store().Save(ctx, sid, sess)
	})
	if err != nil {
		s.wizardError(w, r, err)
		return
	}

	if outcome.Errors != nil {
		writeJSON(w, http.StatusUnprocessableEntity, outcome)
		return
	}

	target := "/onboarding/review"
	if outcome.NextStep > 0 {
		target = fmt.Sprintf("/onboarding/step/%d", outcome.NextStep)
	}
	s.seeOther(w, r, target)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	sess, err := s.sessions.LoadOrStart(r.Context(), sid)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	view, err := s.engine.EnterReview(r.Context(), sess)
	if err != nil {
		s.wizardError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSubmitFinal(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	var confirmation *wizard.Confirmation
	err := s.sessions.WithLock(r.Context(), sid, func(ctx context.Context) error {
		sess, err := s.sessions.Store().Load(ctx, sid)
		if errors.Is(err, domain.ErrSessionNotFound) {
			sess = domain.NewWizardSession(sid)
		} else if err != nil {
			return err
		}

		confirmation, err = s.engine.SubmitFinal(ctx, sess)
		if err != nil {
			// The in-store session is untouched; the user retries with
			// everything intact.
			return err
		}
		return s.sessions.Store().Save(ctx, sid, sess)
	})
	if err != nil {
		var redirect *wizard.RedirectError
		if errors.As(err, &redirect) {
			s.redirectToStep(w, r, redirect)
			return
		}
		s.logger.Error("final submission failed", "session_id", sid, "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":     "submission could not be completed, please try again",
			"retryable": true,
		})
		return
	}

	s.seeOther(w, r, "/listings/"+confirmation.Slug)
}

// --- Directory handlers ---

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results, err := s.directory.Search(r.Context(), directory.SearchFilter{
		Query:        q.Get("q"),
		Industry:     q.Get("industry"),
		FeaturedOnly: q.Get("featured") == "true",
	})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"listings": results})
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := s.directory.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, domain.ErrListingNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "listing not found"})
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// --- Moderation handlers ---

func (s *Server) handlePendingQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := s.moderation.Pending(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"listings": queue})
}

func (s *Server) moderationAction(action func(context.Context, string) (*domain.Listing, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := action(r.Context(), chi.URLParam(r, "id"))
		s.writeModerationResult(w, r, listing, err)
	}
}

func (s *Server) flagAction(action func(context.Context, string, bool) (*domain.Listing, error), value bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := action(r.Context(), chi.URLParam(r, "id"), value)
		s.writeModerationResult(w, r, listing, err)
	}
}

func (s *Server) writeModerationResult(w http.ResponseWriter, r *http.Request, listing *domain.Listing, err error) {
	switch {
	case errors.Is(err, domain.ErrListingNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "listing not found"})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case err != nil:
		s.serverError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, listing)
	}
}

// --- Meta handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := OpenAPISpec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"app":         "vicinity",
		"version":     strings.TrimSpace(s.version),
		"api_version": apiVersion,
		"total_steps": s.engine.TotalSteps(),
	})
}

func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(rawOpenAPISpec())
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(swaggerHTML))
}

// --- Helpers ---

// wizardError maps engine errors onto transport semantics: ordering
// violations redirect, unknown steps 404, everything else is a 500.
func (s *Server) wizardError(w http.ResponseWriter, r *http.Request, err error) {
	var redirect *wizard.RedirectError
	switch {
	case errors.As(err, &redirect):
		s.redirectToStep(w, r, redirect)
	case errors.Is(err, domain.ErrStepNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such step"})
	default:
		s.serverError(w, r, err)
	}
}

func (s *Server) redirectToStep(w http.ResponseWriter, r *http.Request, redirect *wizard.RedirectError) {
	target := fmt.Sprintf("/onboarding/step/%d", redirect.Target)
	if redirect.Notice != "" {
		target += "?notice=" + url.QueryEscape(redirect.Notice)
	}
	s.seeOther(w, r, target)
}

func (s *Server) seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// parseFields accepts either a JSON object or a classic form post.
func parseFields(r *http.Request) (map[string]string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		fields := make(map[string]string)
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	fields := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	return fields, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Vicinity API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
