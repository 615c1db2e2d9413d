package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"livegrep/config"
	"livegrep/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "livegrep",
		Short: "Live content search with ripgrep",
		Long:  "livegrep: type a query, watch matches and a context preview update as you type.",
		RunE:  run,
	}

	root.Flags().StringP("dir", "d", "", "Directory to search (default: git root or current directory)")
	root.Flags().String("editor", "", "Editor for opening matches (cursor or code)")
	root.Flags().Duration("debounce", 0, "Delay between keystroke and search")

	return root
}

func run(cmd *cobra.Command, args []string) error {
	if _, err := exec.LookPath("rg"); err != nil {
		return fmt.Errorf("ripgrep (rg) is not installed or not in PATH")
	}

	// The terminal belongs to the TUI; diagnostics go to a file.
	logFile, err := os.OpenFile("livegrep.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("config: %v", err)
		cfg = config.Default()
	}

	if ed, _ := cmd.Flags().GetString("editor"); ed != "" {
		cfg.Editor = ed
	} else if ed := os.Getenv("LIVEGREP_EDITOR"); cfg.Editor == "" && ed != "" {
		cfg.Editor = ed
	}
	if debounce, _ := cmd.Flags().GetDuration("debounce"); debounce > 0 {
		cfg.DebounceMs = int(debounce / time.Millisecond)
	}
	dir, _ := cmd.Flags().GetString("dir")

	model := tui.New(cfg, dir)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
