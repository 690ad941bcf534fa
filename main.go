package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sthembisoo/hoptoad-notifier/cmd/notify"
)

var rootCmd = &cobra.Command{
	Use:   "toadhopper",
	Short: "Post errors to the Hoptoad notifier API",
}

func main() {
	rootCmd.AddCommand(notify.NewCmdNotify())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
