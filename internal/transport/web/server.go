package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jeecollege/collegerag/internal/domain"
	"github.com/jeecollege/collegerag/internal/metrics"
	"github.com/jeecollege/collegerag/internal/usecase/answer"
)

//go:embed templates/*.html
var templateFS embed.FS

// Fixed user-facing strings for the three recoverable failure states.
// Structured error detail stays in the logs; the caller sees only these.
const (
	MsgNoContext       = "No relevant data found in the database."
	MsgRetrievalFailed = "Database retrieval failed."
	MsgGenerationFail  = "AI generation failed."
)

// Server renders the survey QA pages.
type Server struct {
	answers   *answer.Service
	pinger    Pinger
	logger    *zap.Logger
	templates map[string]*template.Template
}

// Pinger reports store connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewServer creates the web server. Panics on malformed embedded templates
// (a build defect, not a runtime condition).
func NewServer(answers *answer.Service, pinger Pinger, logger *zap.Logger) *Server {
	pages := []string{"home", "qa", "notfound"}
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		templates[page] = template.Must(template.ParseFS(
			templateFS, "templates/layout.html", "templates/"+page+".html",
		))
	}
	return &Server{answers: answers, pinger: pinger, logger: logger, templates: templates}
}

// Routes mounts all handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.handleHome)
	r.Get("/qa/{collegeSlug}", s.handleQAForm)
	r.Post("/qa/{collegeSlug}", s.handleQASubmit)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.NotFound(s.renderNotFound)
}

type homeData struct {
	PageTitle string
	Colleges  []answer.College
}

type qaData struct {
	PageTitle   string
	CollegeSlug string
	CollegeName string
	Question    string
	Answer      string
	IsError     bool
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "home", homeData{
		PageTitle: "College Survey QA - Select a College",
		Colleges:  s.answers.Registry().All(),
	})
}

func (s *Server) handleQAForm(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "collegeSlug")
	name, ok := s.answers.Registry().Lookup(slug)
	if !ok {
		s.renderNotFound(w, r)
		return
	}

	s.render(w, http.StatusOK, "qa", qaData{
		PageTitle:   name + " - Survey QA",
		CollegeSlug: slug,
		CollegeName: name,
	})
}

func (s *Server) handleQASubmit(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "collegeSlug")
	name, ok := s.answers.Registry().Lookup(slug)
	if !ok {
		s.renderNotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(r.PostFormValue("question"))
	data := qaData{
		PageTitle:   name + " - Survey QA",
		CollegeSlug: slug,
		CollegeName: name,
		Question:    question,
	}

	// A blank question re-renders the empty form without touching the
	// answer pipeline.
	if question == "" {
		s.render(w, http.StatusOK, "qa", data)
		return
	}

	res, err := s.answers.Answer(r.Context(), question, slug)
	data.Answer, data.IsError = s.presentAnswer(slug, res, err)
	if answer.IsNotFound(err) {
		s.renderNotFound(w, r)
		return
	}

	s.render(w, http.StatusOK, "qa", data)
}

// presentAnswer maps the answer outcome or error to the user-facing text
// and records the terminal state metric.
func (s *Server) presentAnswer(slug string, res answer.Answer, err error) (string, bool) {
	switch {
	case err == nil && res.Outcome == answer.OutcomeNoContext:
		metrics.AnswersTotal.WithLabelValues(slug, "no_context").Inc()
		return MsgNoContext, true
	case err == nil:
		metrics.AnswersTotal.WithLabelValues(slug, "answered").Inc()
		return res.Text, false
	case answer.IsNotFound(err):
		metrics.AnswersTotal.WithLabelValues(slug, "not_found").Inc()
		return "", true
	case errors.Is(err, domain.ErrRetrieval):
		metrics.AnswersTotal.WithLabelValues(slug, "db_error").Inc()
		return MsgRetrievalFailed, true
	case errors.Is(err, domain.ErrGeneration):
		metrics.AnswersTotal.WithLabelValues(slug, "gen_error").Inc()
		return MsgGenerationFail, true
	default:
		// The answer service only emits the taxonomy above; anything else
		// is a programming error surfaced as a retrieval failure.
		s.logger.Error("Unclassified answer error", zap.Error(err))
		metrics.AnswersTotal.WithLabelValues(slug, "db_error").Inc()
		return MsgRetrievalFailed, true
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		http.Error(w, "store unreachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) renderNotFound(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusNotFound, "notfound", homeData{PageTitle: "College not found"})
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates[page].ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("Template render failed", zap.String("page", page), zap.Error(err))
	}
}
