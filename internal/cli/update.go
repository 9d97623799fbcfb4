package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/guiyumin/vlink/internal/updater"
	"github.com/spf13/cobra"
)

var updateCheck bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update vlink to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !updateCheck {
			return updater.Update()
		}

		latest, available, err := updater.CheckUpdate()
		if err != nil {
			return err
		}
		if !available {
			fmt.Println(color.GreenString("vlink is up to date"))
			return nil
		}
		fmt.Printf("New version available: %s (run 'vlink update')\n", color.CyanString(latest.Version()))
		return nil
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheck, "check", false, "only check for a newer release")
	rootCmd.AddCommand(updateCmd)
}
