package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/dinoevo/internal/config"
)

var flagEffective bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the simulation configuration",
	Long: `Print the embedded default configuration as YAML. Save it to
~/.dinoevo/configs/sim.yaml or ./configs/sim.yaml to customize runs.

With --effective, print the configuration after loading --config and the
search paths.

Examples:
  dinoevo config > configs/sim.yaml
  dinoevo config --effective --config ./fast.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagEffective, "effective", false, "Print the loaded configuration instead of the defaults")
}

func runConfig(cmd *cobra.Command, _ []string) error {
	if !flagEffective {
		_, err := cmd.OutOrStdout().Write(config.DefaultYAML())
		return err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
	return err
}
