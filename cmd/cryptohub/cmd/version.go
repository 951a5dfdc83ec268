package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the cryptohub CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cryptohub version %s\n", version)
		fmt.Println("A crypto dashboard backend with virtual trading on dummy money")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
