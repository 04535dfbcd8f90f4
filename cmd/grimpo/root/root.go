package root

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grimpo/internal/config"
	"grimpo/internal/logging"
	"grimpo/internal/ui"
)

const Version = "0.1.0"

// app carries the flags and the state built once per invocation.
type app struct {
	dbPath      string
	key         string
	catalogPath string
	verbose     bool
	memory      bool

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	cmd := &cobra.Command{
		Use:           "grimpo",
		Short:         "Grimpo: grow an abyssal garden by finishing tasks",
		Long:          "Grimpo turns completed tasks into shells you spend on decorations for your abyssal garden.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.dbPath, "db", "", "SQLite database path (default ~/.grimpo.db)")
	flags.StringVar(&a.key, "key", "", "player key whose garden is opened")
	flags.StringVar(&a.catalogPath, "catalog", "", "YAML catalog replacing the built-in one")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&a.memory, "memory", false, "keep the garden in memory only")

	cmd.AddCommand(
		newStatusCmd(a),
		newCatalogCmd(a),
		newCompleteCmd(a),
		newBuyCmd(a),
		newPlaceCmd(a),
		newMoveCmd(a),
		newResizeCmd(a),
		newRecolorCmd(a),
		newRemoveCmd(a),
		newBoardCmd(a),
		newServeCmd(a),
	)
	return cmd
}

// setup reads the environment, lets flags win, and builds the logger.
func (a *app) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.key != "" {
		cfg.PlayerKey = a.key
	}
	if a.catalogPath != "" {
		cfg.CatalogPath = a.catalogPath
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.LogLevel, a.verbose)
	if err != nil {
		return err
	}
	a.log = logger
	return nil
}

func Execute() {
	rootCmd := newRootCmd()
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
