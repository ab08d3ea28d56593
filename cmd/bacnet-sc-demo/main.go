// Command bacnet-sc-demo starts a BACnet/SC acceptor or dials an initiator
// against the real wsbridge transport, exercising only Connect/Accept/Send/
// Recv/Disconnect — not a BACnet object/property CLI front-end.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "bacnet-sc-demo",
		Short: "BACnet/SC connection engine demo",
		Long:  "Starts a BACnet/SC acceptor or dials an initiator against the real WebSocket transport.",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a BACnet/SC node YAML config file")
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(dialCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
