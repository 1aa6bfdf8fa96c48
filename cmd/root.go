// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// newRootCmd builds the command tree. The root command itself runs a
// capture session.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pktinspect",
		Short: "pktinspect - live network traffic inspector",
		Long: `pktinspect captures frames from a network interface (or a pcap file),
decodes the Ethernet, IP and TCP/UDP layers, prints a readable block per
packet and records a one-line summary of every packet in a session log.

Examples:
  pktinspect -i eth0                         # capture until Ctrl-C
  pktinspect -i eth0 -c 100 -f "tcp port 80" # 100 HTTP packets
  pktinspect -r trace.pcap -q                # replay a file, log only
  pktinspect -i eth0 -w out.pcap --metrics :9091`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runCapture(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file path (YAML)")
	flags.StringP("interface", "i", "", "network interface to capture on")
	flags.IntP("count", "c", 0, "stop after this many packets (0 = unlimited)")
	flags.StringP("filter", "f", "", "BPF filter expression")
	flags.String("backend", "pcap", "capture backend: pcap or afpacket")
	flags.StringP("read", "r", "", "read frames from a pcap file instead of an interface")
	flags.StringP("write", "w", "", "also write processed frames to a pcap file")
	flags.Int("snaplen", 65535, "snapshot length in bytes")
	flags.String("log-dir", ".", "directory for the session log file")
	flags.String("log-level", "info", "diagnostic log level (trace/debug/info/warn/error)")
	flags.BoolP("quiet", "q", false, "do not print packet blocks, only the session log")
	flags.Bool("no-color", false, "disable colored console output")
	flags.String("metrics", "", "serve Prometheus metrics on this address")

	rootCmd.AddCommand(newInterfacesCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}
