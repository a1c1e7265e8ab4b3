package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	addesso "github.com/albertobarberis/addesso-synth"
	"github.com/albertobarberis/addesso-synth/report"
	"github.com/albertobarberis/addesso-synth/rpc"
)

var sendAddress string

var sendCmd = &cobra.Command{
	Use:   "send <command> [value]",
	Short: "Send a command to a synth started with play --listen",
	Long: fmt.Sprintf(`Send a command to a running synth and print the state that follows.

Commands: %s

Examples:
  addesso send partials 48
  addesso send mode asr
  addesso send noteOn
  addesso send state --addr studio:31337`, strings.Join(addesso.CommandNames(), ", ")),
	Args: cobra.RangeArgs(1, 2),
	RunE: func(c *cobra.Command, args []string) error {
		cmd, err := addesso.ParseCommand(args[0], args[1:]...)
		if err != nil {
			return err
		}
		client, err := rpc.Dial(sendAddress)
		if err != nil {
			return err
		}
		defer client.Close()
		snap, err := client.Send(cmd)
		if err != nil {
			return err
		}
		return report.Write(c.OutOrStdout(), snap, report.Options{MaxPartials: 16})
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendAddress, "addr", "localhost"+rpc.DefaultAddress, "Address of the synth")
}
