package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/projgen/internal/options"
)

var optionsTarget string

func init() {
	optionsCmd.Flags().StringVar(&optionsTarget, "target", "",
		"resolve values for this target label (requires a config)")
	rootCmd.AddCommand(optionsCmd)
}

var optionsCmd = &cobra.Command{
	Use:   "options [config]",
	Short: "List generator options",
	Long: `List the options a config may set, with their type, scope and default.

Per-user options are stored in the overlay, everything else in the shared
config. When a config is given, the value each option resolves to is shown
as well: the per-target value when --target is set, else the common value,
else the default.`,
	Example: `  # All recognized options
  projgen options

  # Values in effect for one target
  projgen options App.projgen --target //app:App

See Also: projgen config init`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOptions,
}

func runOptions(cmd *cobra.Command, args []string) error {
	var set *options.Set
	if len(args) == 1 {
		cfg, err := loadConfig(cmd, args[0])
		if err != nil {
			return err
		}
		set = cfg.Options()
	}

	schema := options.DefaultSchema()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	if set == nil {
		fmt.Fprintln(tw, "KEY\tKIND\tSCOPE\tDEFAULT\tDESCRIPTION")
	} else {
		fmt.Fprintln(tw, "KEY\tKIND\tSCOPE\tVALUE\tDESCRIPTION")
	}

	for _, key := range schema.Keys() {
		def, _ := schema.Lookup(key)
		value := def.Default
		if set != nil {
			value, _ = set.Effective(key, optionsTarget)
		}
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", key, def.Kind, def.Scope, value, def.Description)
	}

	if set != nil {
		for _, scope := range []options.Scope{options.ScopeShared, options.ScopePerUser} {
			for _, key := range set.UnknownIn(scope) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", key, "?", scope, "(kept as-is)", "unrecognized option")
			}
		}
	}

	return tw.Flush()
}
