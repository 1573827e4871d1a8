// Package web sirve los tableros en HTML: filtros, tarjetas KPI, tablas y
// gráficas Chart.js, más la exportación CSV/XLSX de la vista filtrada.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dmendozad/tableros-vpo/internal/board"
	"github.com/dmendozad/tableros-vpo/internal/config"
	"github.com/dmendozad/tableros-vpo/internal/dataset"
)

//go:embed templates/*.gohtml
var tplFS embed.FS

// Server atiende la interfaz web. Cada tablero tiene su propio Store de
// filtros, así la selección sobrevive entre peticiones y exportaciones.
type Server struct {
	conf   *config.Configuration
	boards []board.Board
	stores map[string]*dataset.Store
	tpl    *template.Template
	log    *zap.Logger
}

func New(conf *config.Configuration, boards []board.Board, log *zap.Logger) (*Server, error) {
	tpl, err := template.New("").
		Funcs(template.FuncMap{
			"toLower": strings.ToLower,
			"toUpper": strings.ToUpper,
			"trim":    strings.TrimSpace,
		}).
		ParseFS(tplFS, "templates/*.gohtml")
	if err != nil {
		return nil, err
	}
	stores := make(map[string]*dataset.Store, len(boards))
	for _, b := range boards {
		stores[b.Slug()] = dataset.NewStore(nil)
	}
	return &Server{conf: conf, boards: boards, stores: stores, tpl: tpl, log: log}, nil
}

// Routes arma el mux completo de la interfaz.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.withLogging(s.handleIndex))
	mux.HandleFunc("/board/", s.withLogging(s.handleBoard))
	mux.HandleFunc("/export/csv", s.withLogging(s.handleExportCSV))
	mux.HandleFunc("/export/xlsx", s.withLogging(s.handleExportXLSX))
	mux.HandleFunc("/reset", s.withLogging(s.handleReset))
	return mux
}

func (s *Server) ListenAndServe() error {
	s.log.Info("interfaz web lista", zap.String("addr", s.conf.Server.Addr))
	return http.ListenAndServe(s.conf.Server.Addr, s.Routes())
}

func (s *Server) withLogging(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		s.log.Debug("petición",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Duration("elapsed", time.Since(start)))
	}
}
