package web

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dmendozad/tableros-vpo/internal/board"
	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/dmendozad/tableros-vpo/internal/export"
	"github.com/dmendozad/tableros-vpo/internal/report"
)

type boardLink struct {
	Slug  string
	Title string
}

func (s *Server) links() []boardLink {
	out := make([]boardLink, len(s.boards))
	for i, b := range s.boards {
		out[i] = boardLink{Slug: b.Slug(), Title: b.Title()}
	}
	return out
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	_ = s.tpl.ExecuteTemplate(w, "index.gohtml", map[string]any{"Boards": s.links()})
}

// selection funde los parámetros de la URL con la selección guardada del
// tablero. Los nombres de filtro son los de columna, tal cual.
func (s *Server) selection(r *http.Request, slug string) dataset.Selection {
	st := s.stores[slug]
	if st == nil {
		return nil
	}
	vals := dataset.Selection{}
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 && vs[0] != "" {
			vals[k] = vs[0]
		}
	}
	return st.Merge(vals)
}

// chartData es una gráfica ya serializada para el template.
type chartData struct {
	ID          string
	Title       string
	Labels      template.JS
	Series      template.JS
	Names       template.JS
	Annotations template.JS
}

func marshalCharts(charts []board.Chart) []chartData {
	out := make([]chartData, 0, len(charts))
	for _, c := range charts {
		if len(c.Labels) == 0 {
			continue
		}
		labels, _ := json.Marshal(c.Labels)
		names := make([]string, len(c.Series))
		series := make([][]float64, len(c.Series))
		for i, sr := range c.Series {
			names[i] = sr.Name
			series[i] = sr.Data
		}
		namesJSON, _ := json.Marshal(names)
		seriesJSON, _ := json.Marshal(series)
		annJSON, _ := json.Marshal(c.Annotations)
		out = append(out, chartData{
			ID:          c.ID,
			Title:       c.Title,
			Labels:      template.JS(labels),
			Series:      template.JS(seriesJSON),
			Names:       template.JS(namesJSON),
			Annotations: template.JS(annJSON),
		})
	}
	return out
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimPrefix(r.URL.Path, "/board/")
	b := board.Lookup(s.boards, slug)
	if b == nil {
		http.NotFound(w, r)
		return
	}
	view, err := b.Render(s.selection(r, slug))
	if err != nil {
		s.log.Error("no se pudo renderizar el tablero", zap.String("board", slug), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data := map[string]any{
		"Boards": s.links(),
		"View":   view,
		"Charts": marshalCharts(view.Charts),
	}
	if err := s.tpl.ExecuteTemplate(w, "board.gohtml", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// renderFor repite el ciclo de render de un tablero con la selección vigente,
// para que las exportaciones reflejen exactamente lo que se ve en pantalla.
func (s *Server) renderFor(slug string) (*board.View, error) {
	b := board.Lookup(s.boards, slug)
	if b == nil {
		return nil, fmt.Errorf("tablero desconocido: %s", slug)
	}
	return b.Render(s.stores[slug].Current())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("board")
	id := r.URL.Query().Get("table")
	if slug == "" || id == "" {
		http.Error(w, "faltan parámetros board y table", http.StatusBadRequest)
		return
	}
	view, err := s.renderFor(slug)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	t := view.Table(id)
	if t == nil {
		http.Error(w, "sin datos para exportar", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s_%s_export.csv", report.SafeFile(slug), report.SafeFile(id)))
	if err := export.TableCSV(w, t); err != nil {
		s.log.Error("falló la exportación CSV", zap.String("board", slug), zap.Error(err))
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("board")
	if slug == "" {
		http.Error(w, "falta el parámetro board", http.StatusBadRequest)
		return
	}
	view, err := s.renderFor(slug)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	f, err := export.ViewXLSX(view)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s_export.xlsx", report.SafeFile(slug)))
	if err := f.Write(w); err != nil {
		s.log.Error("falló la exportación XLSX", zap.String("board", slug), zap.Error(err))
	}
	_ = f.Close()
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("board")
	st := s.stores[slug]
	if st == nil {
		http.NotFound(w, r)
		return
	}
	st.Reset()
	http.Redirect(w, r, "/board/"+slug, http.StatusSeeOther)
}
