package cli

import (
	"fmt"

	"github.com/guiyumin/vlink/internal/core/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create vlink config file with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		if initForce {
			if err := config.Save(config.DefaultConfig()); err != nil {
				return err
			}
		} else if err := config.Init(); err != nil {
			return err
		}

		fmt.Printf("Saved %s\n", config.SavePath())
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
