package main

import (
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/laffle/internal/catalog"
	"github.com/Simplici0/laffle/internal/config"
	"github.com/Simplici0/laffle/internal/money"
	"github.com/Simplici0/laffle/internal/scenario"
	"github.com/Simplici0/laffle/internal/session"
)

type server struct {
	log         *zap.Logger
	sessions    *session.Store
	catalog     *catalog.Repository
	scenarios   *scenario.Repository
	calc        config.Calculation
	templateDir string
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

func flashFromQuery(r *http.Request) baseViewData {
	return baseViewData{
		ErrorMessage:   r.URL.Query().Get("error"),
		SuccessMessage: r.URL.Query().Get("success"),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(filepath.Join(s.templateDir, "..", "static")))))

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/", s.handleHome)

		r.Route("/costing", func(r chi.Router) {
			r.Get("/", s.handleCostingPage)
			r.Post("/calc", s.handleCostingCalc)
			r.Post("/ingredients", s.handleIngredientUpsert)
			r.Post("/ingredients/delete", s.handleIngredientDelete)
			r.Post("/import", s.handleMasterImport)
			r.Get("/export.csv", s.handleMasterExport)
			r.Post("/catalog", s.handleCatalogSave)
			r.Post("/reset", s.handleMasterReset)
		})

		r.Route("/analysis", func(r chi.Router) {
			r.Get("/", s.handleAnalysisPage)
			r.Get("/series.json", s.handleAnalysisSeries)
			r.Post("/scenarios", s.handleScenarioSave)
		})
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

var templateFuncs = template.FuncMap{
	"yen":   money.Yen,
	"fixed": money.Fixed,
	"num":   formatNumber,
}

func (s *server) renderTemplate(w http.ResponseWriter, page string, data any) {
	templates, err := template.New("layout.html").Funcs(templateFuncs).ParseFiles(
		filepath.Join(s.templateDir, "layout.html"),
		filepath.Join(s.templateDir, page),
	)
	if err != nil {
		s.log.Error("parse template", zap.String("page", page), zap.Error(err))
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		s.log.Error("render template", zap.String("page", page), zap.Error(err))
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, "home.html", nil)
}
