package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/objectregistry/pkg/writer"
)

// Set with -ldflags "-X github.com/objectregistry/cmd/objreg/cmd.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

type versionInfo struct {
	Binary    string `json:"binary"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// currentVersion fills unset ldflags values from the VCS stamp go build embeds.
func currentVersion() versionInfo {
	info := versionInfo{
		Binary:    BinName(),
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.GitCommit == "unknown":
			info.GitCommit = s.Value
		case s.Key == "vcs.time" && info.BuildTime == "unknown":
			info.BuildTime = s.Value
		}
	}
	return info
}

func printVersion(w io.Writer, info versionInfo) {
	fmt.Fprintf(w, "%s version %s\n", info.Binary, info.Version)
	fmt.Fprintf(w, "  Git Commit: %s\n", info.GitCommit)
	fmt.Fprintf(w, "  Build Time: %s\n", info.BuildTime)
	fmt.Fprintf(w, "  Go Version: %s\n", info.GoVersion)
	fmt.Fprintf(w, "  OS/Arch:    %s\n", info.Platform)
}

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersion()
		if versionJSON {
			return writer.NewPrettyJSONWriter[versionInfo]().Write(info, cmd.OutOrStdout())
		}
		printVersion(cmd.OutOrStdout(), info)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print version information as JSON")
	rootCmd.AddCommand(versionCmd)
}
