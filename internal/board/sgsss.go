package board

import (
	"github.com/dmendozad/tableros-vpo/internal/config"
	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/dmendozad/tableros-vpo/internal/load"
	"github.com/dmendozad/tableros-vpo/internal/report"
	"go.uber.org/zap"
)

var sgsssSchema = load.Schema{
	Expected:     []string{"PERIODO", "ENTIDAD", "DEPTO", "CONTRIBUTIVO", "SUBSIDIADO", "TOTAL"},
	NumericHints: []string{"CONTRIBUTIVO", "SUBSIDIADO", "TOTAL"},
	UpperText:    []string{"PERIODO", "ENTIDAD", "DEPTO"},
}

var sgsssRename = map[string]string{
	"PERIODO":       "Periodo",
	"ENTIDAD":       "Entidad",
	"DEPTO":         "Departamento",
	"CONTRIBUTIVO":  "Contributivo",
	"SUBSIDIADO":    "Subsidiado",
	"TOTAL":         "Total Afiliados",
	"PARTICIPACION": "% Participación",
}

// SGSSS es el tablero del consolidado nacional de afiliación al SGSSS.
type SGSSS struct {
	conf   *config.Configuration
	loader *load.Loader
	log    *zap.Logger
}

func NewSGSSS(conf *config.Configuration, loader *load.Loader, log *zap.Logger) *SGSSS {
	return &SGSSS{conf: conf, loader: loader, log: log}
}

func (b *SGSSS) Slug() string  { return "sgsss" }
func (b *SGSSS) Title() string { return "Población SGSSS Nacional" }

// rankSpec arma el ranking por la dimensión pedida: sumas por régimen,
// participación sobre el total nacional y fila de totales.
func rankSpec(dim string) report.Spec {
	return report.Spec{
		GroupBy:   []string{dim},
		Sums:      []string{"CONTRIBUTIVO", "SUBSIDIADO", "TOTAL"},
		ShareOf:   "TOTAL",
		ShareName: "PARTICIPACION",
		SortBy:    "TOTAL",
		SortDesc:  true,
		WithTotal: true,
		Rename:    sgsssRename,
	}
}

func (b *SGSSS) Render(sel dataset.Selection) (*View, error) {
	main, err := b.loader.Dataset(b.conf.Data.SGSSSPath(), b.conf.Data.SheetConsolidado)
	if err != nil {
		return nil, err
	}
	main = load.Prepare(main, sgsssSchema)

	v := &View{Slug: b.Slug(), Title: b.Title()}

	// la evolución ignora el filtro de periodo para mostrar la serie completa
	full := dataset.Apply(main, sel, "PERIODO", "DEPTO", "ENTIDAD")
	trend := dataset.Apply(main, sel, "DEPTO", "ENTIDAD")

	v.Filters = []FilterControl{
		control(main, "PERIODO", "Periodo", sel, false),
		control(main, "DEPTO", "Departamento", sel, false),
		control(main, "ENTIDAD", "Entidad", sel, false),
	}

	contrib := report.Sum(full, "CONTRIBUTIVO")
	subsid := report.Sum(full, "SUBSIDIADO")
	total := report.Sum(full, "TOTAL")
	v.KPIGroups = append(v.KPIGroups, KPIGroup{
		Title: "Afiliación SGSSS",
		KPIs: []KPI{
			{Label: "Total Afiliados", Value: report.FmtMoney(total)},
			{Label: "Régimen Contributivo", Value: report.FmtMoney(contrib)},
			{Label: "Régimen Subsidiado", Value: report.FmtMoney(subsid)},
			{Label: "% Contributivo", Value: report.FmtPct(report.Ratio(contrib, total))},
		},
	})

	v.Tables = append(v.Tables,
		RenderedTable{ID: "entidad", Title: "Ranking por Entidad", Table: report.Aggregate(full, rankSpec("ENTIDAD"))},
		RenderedTable{ID: "depto", Title: "Ranking por Departamento", Table: report.Aggregate(full, rankSpec("DEPTO"))},
		RenderedTable{ID: "evolucion", Title: "Evolución por Periodo", Table: report.Aggregate(trend, report.Spec{
			GroupBy: []string{"PERIODO"},
			Sums:    []string{"CONTRIBUTIVO", "SUBSIDIADO", "TOTAL"},
			Rename:  sgsssRename,
		})},
		RenderedTable{ID: "evolucion-entidad", Title: "Evolución por Entidad", Table: report.Aggregate(trend, report.Spec{
			GroupBy: []string{"PERIODO", "ENTIDAD"},
			Sums:    []string{"CONTRIBUTIVO", "SUBSIDIADO", "TOTAL"},
			Rename:  sgsssRename,
		})},
	)

	v.Charts = append(v.Charts,
		chartFromTable(v.Table("evolucion"),
			"evolucion", "Evolución de Afiliados por Periodo",
			"PERIODO", []string{"CONTRIBUTIVO", "SUBSIDIADO"},
			[]string{"Contributivo", "Subsidiado"}, ""),
		chartFromTable(v.Table("depto"),
			"depto", "Afiliados por Departamento",
			"DEPTO", []string{"TOTAL"},
			[]string{"Total Afiliados"}, "PARTICIPACION"),
	)

	return v, nil
}
