package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/genconfig"
	"github.com/thoreinstein/projgen/internal/logging"
	"github.com/thoreinstein/projgen/internal/watch"
)

var configWatchDebounce time.Duration

func init() {
	configWatchCmd.Flags().DurationVar(&configWatchDebounce, "debounce", watch.DefaultDebounce,
		"quiet period before reloading after a change")
	configCmd.AddCommand(configWatchCmd)
}

var configWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Reload a config whenever it or its overlay changes",
	Long: `Load a config, print a summary, and print a new summary each time the
config or the current user's overlay changes. Load errors are logged and
watching continues. Stop with Ctrl-C.`,
	Example: `  projgen config watch App.projgen

See Also: projgen config show`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigWatch,
}

func runConfigWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := cmd.OutOrStdout()
	logger := logging.FromContext(cmd.Context())

	err := watch.Config(ctx, newStore(cmd), args[0], toolPathOverride(),
		func(cfg *genconfig.Config, err error) {
			if err != nil {
				logger.Error("reload failed", "error", err)
				return
			}
			fmt.Fprintf(w, "[%s] ", time.Now().Format(time.TimeOnly))
			printSummary(w, cfg)
		},
		watch.WithDebounce(configWatchDebounce),
		watch.WithLogger(logger),
	)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	return nil
}
