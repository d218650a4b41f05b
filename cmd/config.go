package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/ripsim/state"
	"github.com/spf13/cobra"
)

func loadConfig(path string) (*state.SimCfg, error) {
	if path == "" {
		cfg := state.DefaultSimCfg()
		return &cfg, nil
	}
	return state.ReadSimConfig(path)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective simulation config as yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		err = state.SimConfigValidator(cfg)
		if err != nil {
			return err
		}
		out, err := state.MarshalSimConfig(*cfg)
		if err != nil {
			return err
		}
		if path, _ := cmd.Flags().GetString("write"); path != "" {
			return os.WriteFile(path, out, 0600)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
		return err
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringP("write", "w", "", "write the config to this path instead of stdout")
}
