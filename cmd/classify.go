// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/absmach/cuecast/pkg/classify"
	"github.com/absmach/cuecast/pkg/handler"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	var (
		endpoint string
		state    string
	)

	cmd := &cobra.Command{
		Use:   "classify <user-agent>",
		Short: "Show how a viewer would be labelled",
		Long: `Print the browser, device and connection labels cuecast derives for a
user agent, as shown in the connected clients list.`,
		Example: `  cuecast classify "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) Safari/604.1" --endpoint 192.168.1.20:51234`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ua := args[0]
			ip := classify.IPFromEndpoint(endpoint)

			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("Viewer classification"))

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Browser\t%s\n", classify.Browser(ua))
			fmt.Fprintf(w, "Device type\t%s\n", classify.DeviceType(ua))
			fmt.Fprintf(w, "Device name\t%s\n", classify.DeviceName(ua, &classify.OSHostNamer{}))
			fmt.Fprintf(w, "Connection\t%s\n", classify.ConnectionType(state))
			fmt.Fprintf(w, "IP\t%s\n", ip)
			fmt.Fprintf(w, "Session key\t%s\n", classify.SessionKey(ip, ua))
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Remote endpoint as host:port")
	cmd.Flags().StringVar(&state, "state", handler.StateReady, "Connection state (waiting, ready, failed, cancelled)")
	return cmd
}
