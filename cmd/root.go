// Package cmd define la línea de comandos del binario tableros.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmendozad/tableros-vpo/internal/config"
	"github.com/dmendozad/tableros-vpo/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	conf   *config.Configuration
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tableros",
	Short: "Tableros operativos de la VPO",
	Long: `Tableros de seguimiento de la Vicepresidencia de Operaciones:
ejecución del ingreso UPC, población BDUA y consolidado SGSSS,
con interfaz web, modo terminal y exportación CSV/XLSX.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			conf, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
		} else {
			conf = config.Default()
		}
		logger, err = logging.New(conf.Logging, logLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "ruta del fichero de configuración YAML")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "nivel de log (debug|info|warn|error)")
}
