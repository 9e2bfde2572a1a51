package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/wikicard/internal/sysinfo"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print build and runtime information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := sysinfo.Collect(cmd.Context())
		out := cmd.OutOrStdout()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}

		fmt.Fprintf(out, "%s %s (commit %s)\n", st.App, st.Version, st.Commit)
		fmt.Fprintf(out, "  go:         %s %s/%s\n", st.GoVersion, st.OS, st.Arch)
		fmt.Fprintf(out, "  cpus:       %d\n", st.CPUs)
		fmt.Fprintf(out, "  goroutines: %d\n", st.Goroutines)
		fmt.Fprintf(out, "  heap:       %s / %s\n", st.Memory.HeapAlloc, st.Memory.HeapSys)
		fmt.Fprintf(out, "  uptime:     %s\n", st.Uptime)
		fmt.Fprintf(out, "host:\n")
		fmt.Fprintf(out, "  os:         %s %s %s\n", st.Host.Platform, st.Host.Distro, st.Host.Release)
		fmt.Fprintf(out, "  cpu:        %s (%d cores)\n", st.Host.CPU.Model, st.Host.CPU.Cores)
		fmt.Fprintf(out, "  load:       %s%% (1m avg %.2f)\n", st.Host.CPU.Load, st.Host.CPU.Load1)
		fmt.Fprintf(out, "  temp:       %s\n", st.Host.CPU.Temp)
		fmt.Fprintf(out, "  ram:        %s / %s\n", st.Host.Memory.Used, st.Host.Memory.Total)
		fmt.Fprintf(out, "  uptime:     %s\n", st.Host.Uptime)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("json", false, "Print JSON")
}
