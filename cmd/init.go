package cmd

import (
	"github.com/spf13/cobra"

	"github.com/finsift/finsift/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize finsift configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure finsift and generates a .finsift.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
