package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/turtacn/EcoExpand-AI/pkg/client"
)

// VersionInfo is printed by the version command.
type VersionInfo struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildDate  string `json:"build_date"`
	SDKVersion string `json:"sdk_version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{
				Version:    Version,
				GitCommit:  GitCommit,
				BuildDate:  BuildDate,
				SDKVersion: client.Version,
				GoVersion:  runtime.Version(),
				Platform:   runtime.GOOS + "/" + runtime.GOARCH,
			}
			return PrintResult(cmd, info, func(w io.Writer) error {
				fmt.Fprintf(w, "ecoexpand %s\n", info.Version)
				fmt.Fprintf(w, "  commit:   %s\n", info.GitCommit)
				fmt.Fprintf(w, "  built:    %s\n", info.BuildDate)
				fmt.Fprintf(w, "  sdk:      %s\n", info.SDKVersion)
				fmt.Fprintf(w, "  go:       %s %s\n", info.GoVersion, info.Platform)
				return nil
			})
		},
	}
}
