package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/comalice/constructs"
	"github.com/comalice/constructs/internal/logging"
)

//go:embed traffic.yaml
var trafficTable []byte

// NewRootCmd builds the demo command tree. Each call returns a fresh tree
// so tests can execute it repeatedly.
func NewRootCmd() *cobra.Command {
	var verbosity int

	root := &cobra.Command{
		Use:   "demo",
		Short: "Drive a table-defined state machine",
		Long: `demo loads a YAML transition table (a traffic light unless --table is
given), runs it on a dedicated queue and prints each transition.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbosity, cmd.ErrOrStderr())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	root.PersistentFlags().String("table", "", "YAML transition table to load instead of the built-in traffic light")

	root.AddCommand(newRunCmd(), newDotCmd())
	return root
}

// loadTable reads the table named by --table, falling back to the embedded one.
func loadTable(cmd *cobra.Command, opts ...constructs.TableOption) (*constructs.Table, error) {
	path, err := cmd.Flags().GetString("table")
	if err != nil {
		return nil, err
	}

	data := trafficTable
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read table: %w", err)
		}
	}

	table, err := constructs.ParseTable(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("load table %q: %w", path, err)
	}
	return table, nil
}
