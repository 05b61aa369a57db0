package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/dinoevo/internal/dino"
	"github.com/vovakirdan/dinoevo/internal/platform/tui"
	"github.com/vovakirdan/dinoevo/internal/storage"
)

var (
	flagAddress     string
	flagHostKeyPath string
	flagServeLimit  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored runs over SSH",
	Long: `Start an SSH server that lets remote users browse stored runs, replay
a champion or page through its generation history. Every session plays its
own replay; quitting one never stops another.

Connect with:
  ssh -p 23235 localhost

Controls:
  Up/Down    - Select a run
  Enter      - Replay the champion
  H          - Generation history
  Q/Esc      - Back
  Ctrl+C     - Disconnect

Examples:
  dinoevo serve
  dinoevo serve --addr :2222 --host-key /etc/dinoevo/host_key`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddress, "addr", tui.DefaultSSHServerConfig().Address, "Address to listen on")
	serveCmd.Flags().StringVar(&flagHostKeyPath, "host-key", "", "Host key path (default: ~/.dinoevo/host_key)")
	serveCmd.Flags().IntVar(&flagServeLimit, "limit", tui.DefaultSSHServerConfig().RunLimit, "Number of runs a session lists")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(os.Stderr, flagLogLevel)
	if err != nil {
		return err
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening runs database: %w", err)
	}
	defer store.Close()

	hostKey, err := expandHome(flagHostKeyPath)
	if err != nil {
		return err
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagAddress
	cfg.HostKeyPath = hostKey
	cfg.RunLimit = flagServeLimit

	srv, err := tui.NewSSHServer(cfg, store, sessionReplay(flagDBPath), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving runs on %s\n", srv.Addr())
	return srv.ListenAndServe(ctx)
}

// sessionReplay plays stored champions for SSH sessions. The session passes
// its own presenter and context, so stopping is per session.
func sessionReplay(dbPath string) tui.ReplayFunc {
	return func(ctx context.Context, runID int64, p dino.Presenter) (dino.Episode, error) {
		res, err := replay(ctx, replayOptions{DBPath: dbPath, RunID: runID, Presenter: p})
		return res.Episode, err
	}
}
