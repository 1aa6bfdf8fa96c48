package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/gopacket/pcap"
	"github.com/spf13/cobra"
)

func newInterfacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interfaces",
		Short: "List capture devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			devs, err := pcap.FindAllDevs()
			if err != nil {
				return fmt.Errorf("list devices: %w", err)
			}
			return printInterfaces(cmd.OutOrStdout(), devs)
		},
	}
}

func printInterfaces(w io.Writer, devs []pcap.Interface) error {
	if len(devs) == 0 {
		_, err := fmt.Fprintln(w, "no capture devices found (insufficient privileges?)")
		return err
	}
	for _, dev := range devs {
		addrs := make([]string, 0, len(dev.Addresses))
		for _, a := range dev.Addresses {
			addrs = append(addrs, a.IP.String())
		}
		line := dev.Name
		if dev.Description != "" {
			line += " (" + dev.Description + ")"
		}
		if len(addrs) > 0 {
			line += "  " + strings.Join(addrs, ", ")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
