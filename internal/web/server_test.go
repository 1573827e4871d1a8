package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/dmendozad/tableros-vpo/internal/board"
	"github.com/dmendozad/tableros-vpo/internal/config"
	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/dmendozad/tableros-vpo/internal/report"
)

// fakeBoard registra la selección recibida y devuelve una vista fija.
type fakeBoard struct {
	lastSel dataset.Selection
}

func (f *fakeBoard) Slug() string  { return "prueba" }
func (f *fakeBoard) Title() string { return "Tablero de Prueba" }

func (f *fakeBoard) Render(sel dataset.Selection) (*board.View, error) {
	f.lastSel = sel
	export := dataset.New("MES", "PRESUPUESTO")
	export.Append(map[string]any{"MES": "ENE", "PRESUPUESTO": 150.0})
	display := dataset.New("Mes", "Presupuesto")
	display.Append(map[string]any{"Mes": "ENE", "Presupuesto": "150"})
	return &board.View{
		Slug:  f.Slug(),
		Title: f.Title(),
		Filters: []board.FilterControl{
			{Name: "MES", Label: "Mes", Options: []string{dataset.All, "ENE"}, Selected: sel.Get("MES")},
		},
		KPIGroups: []board.KPIGroup{{Title: "Totales", KPIs: []board.KPI{{Label: "Presupuesto", Value: "150"}}}},
		Tables: []board.RenderedTable{
			{ID: "mes", Title: "Por Mes", Table: &report.Table{Export: export, Display: display}},
		},
	}, nil
}

func testServer(t *testing.T) (*Server, *fakeBoard) {
	t.Helper()
	fb := &fakeBoard{}
	s, err := New(config.Default(), []board.Board{fb}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return s, fb
}

func TestHandleIndex(t *testing.T) {
	s, _ := testServer(t)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("código = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/board/prueba") {
		t.Errorf("el índice no enlaza el tablero: %s", rec.Body.String())
	}
}

func TestHandleBoard(t *testing.T) {
	s, fb := testServer(t)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/board/prueba?MES=ENE", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("código = %d: %s", rec.Code, rec.Body.String())
	}
	if fb.lastSel.Get("MES") != "ENE" {
		t.Errorf("el filtro de la URL no llegó al tablero: %v", fb.lastSel)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Tablero de Prueba") || !strings.Contains(body, "Por Mes") {
		t.Errorf("cuerpo incompleto")
	}

	// la selección queda guardada para la siguiente petición
	rec = httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/board/prueba", nil))
	if fb.lastSel.Get("MES") != "ENE" {
		t.Errorf("la selección no persistió entre peticiones")
	}
}

func TestHandleBoardDesconocido(t *testing.T) {
	s, _ := testServer(t)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/board/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("código = %d, quería 404", rec.Code)
	}
}

func TestHandleExportCSV(t *testing.T) {
	s, _ := testServer(t)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/export/csv?board=prueba&table=mes", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("código = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "prueba_mes_export.csv") {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if lines[0] != "Mes,Presupuesto" || lines[1] != "ENE,150.00" {
		t.Errorf("CSV = %q", rec.Body.String())
	}
}

func TestHandleReset(t *testing.T) {
	s, fb := testServer(t)
	mux := s.Routes()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/board/prueba?MES=ENE", nil))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/reset?board=prueba", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("código = %d, quería redirección", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/board/prueba", nil))
	if fb.lastSel.Get("MES") != dataset.All {
		t.Errorf("tras el reset la selección debía volver a Todos: %v", fb.lastSel)
	}
}
