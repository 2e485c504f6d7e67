package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/imhmg/purl/packages/core/config"
	"github.com/imhmg/purl/packages/pvars"
)

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "Inspect and edit persistent variables",
	Long: `Persistent variables live in the .purl workspace and carry captured
values from one run into the next.

Examples:
  purl vars list
  purl vars get token
  purl vars set base_url https://api.test
  purl vars unset token
  purl vars clear`,
}

var varsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all persistent variables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPvars(cmd, func(store *pvars.Store) error {
			all, err := store.Load()
			if err != nil {
				return err
			}
			names := make([]string, 0, len(all))
			for name := range all {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", name, formatVar(all[name]))
			}
			return nil
		})
	},
}

var varsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print one persistent variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPvars(cmd, func(store *pvars.Store) error {
			value, found, err := store.Get(args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no persistent variable named %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatVar(value))
			return nil
		})
	},
}

var varsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set a persistent variable",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPvars(cmd, func(store *pvars.Store) error {
			return store.Put(args[0], args[1])
		})
	},
}

var varsUnsetCmd = &cobra.Command{
	Use:   "unset <name>",
	Short: "Delete a persistent variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPvars(cmd, func(store *pvars.Store) error {
			return store.Delete(args[0])
		})
	},
}

var varsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every persistent variable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPvars(cmd, func(store *pvars.Store) error {
			return store.Clear()
		})
	},
}

func init() {
	varsCmd.AddCommand(varsListCmd)
	varsCmd.AddCommand(varsGetCmd)
	varsCmd.AddCommand(varsSetCmd)
	varsCmd.AddCommand(varsUnsetCmd)
	varsCmd.AddCommand(varsClearCmd)
}

func withPvars(cmd *cobra.Command, fn func(store *pvars.Store) error) error {
	cmd.SilenceUsage = true

	ws := config.Discover(".")
	if err := ws.EnsureLayout(); err != nil {
		return err
	}

	store, err := pvars.Open(ws.PvarsPath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// formatVar renders structured values as JSON, scalars bare.
func formatVar(value any) string {
	switch value.(type) {
	case map[string]any, []any:
		encoded, err := json.Marshal(value)
		if err == nil {
			return string(encoded)
		}
	}
	return fmt.Sprintf("%v", value)
}
