package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dmendozad/tableros-vpo/internal/board"
	"github.com/dmendozad/tableros-vpo/internal/load"
	"github.com/dmendozad/tableros-vpo/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sirve los tableros como interfaz web",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			conf.Server.Addr = serveAddr
		}
		boards := board.Registry(conf, load.NewLoader(), logger)
		srv, err := web.New(conf, boards, logger)
		if err != nil {
			return err
		}
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "dirección de escucha (por defecto la de configuración)")
	rootCmd.AddCommand(serveCmd)
}
