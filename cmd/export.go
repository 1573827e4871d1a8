package cmd

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmendozad/tableros-vpo/internal/board"
	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/dmendozad/tableros-vpo/internal/export"
	"github.com/dmendozad/tableros-vpo/internal/load"
)

var (
	exportFormat  string
	exportOut     string
	exportFilters []string
)

var exportCmd = &cobra.Command{
	Use:   "export <tablero>",
	Short: "Exporta las tablas de un tablero a CSV o XLSX",
	Long: `Exporta todas las tablas con datos del tablero indicado, aplicando
los filtros pedidos con --set. Ejemplo:

  tableros export ingreso --set ANO=2024 --set REGIMEN=SUBSIDIADO -f xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		boards := board.Registry(conf, load.NewLoader(), logger)
		b := board.Lookup(boards, args[0])
		if b == nil {
			slugs := make([]string, len(boards))
			for i, bb := range boards {
				slugs[i] = bb.Slug()
			}
			return errors.Errorf("tablero desconocido %q (disponibles: %s)", args[0], strings.Join(slugs, ", "))
		}

		sel := dataset.Selection{}
		for _, f := range exportFilters {
			k, v, ok := strings.Cut(f, "=")
			if !ok || k == "" {
				return errors.Errorf("filtro inválido %q, se espera COLUMNA=valor", f)
			}
			sel[k] = v
		}

		view, err := b.Render(sel)
		if err != nil {
			return err
		}
		for _, n := range view.Notices {
			logger.Warn("aviso del tablero", zap.String("board", b.Slug()), zap.String("notice", n))
		}

		switch exportFormat {
		case "csv":
			files, err := export.SaveViewCSV(view, exportOut)
			if err != nil {
				return err
			}
			for _, fn := range files {
				fmt.Println(fn)
			}
		case "xlsx":
			fn, err := export.SaveViewXLSX(view, exportOut)
			if err != nil {
				return err
			}
			fmt.Println(fn)
		default:
			return errors.Errorf("formato desconocido %q, use csv o xlsx", exportFormat)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "formato de salida (csv|xlsx)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", ".", "directorio de salida")
	exportCmd.Flags().StringArrayVar(&exportFilters, "set", nil, "filtro COLUMNA=valor (repetible)")
	rootCmd.AddCommand(exportCmd)
}
