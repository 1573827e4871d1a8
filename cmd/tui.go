package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dmendozad/tableros-vpo/internal/board"
	"github.com/dmendozad/tableros-vpo/internal/load"
	"github.com/dmendozad/tableros-vpo/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Abre los tableros en modo terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		boards := board.Registry(conf, load.NewLoader(), logger)
		p := tea.NewProgram(tui.New(boards), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
