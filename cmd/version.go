package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion records the build information injected by the linker
func SetVersion(v, bt string) {
	if v != "" {
		version = v
	}
	if bt != "" {
		buildTime = bt
	}
	rootCmd.Version = version
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the version of holocron",
	Args:              cobra.NoArgs,
	PersistentPreRunE: skipInitialize,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
		return nil
	},
}

func versionString() string {
	v := version
	if parsed, err := parseVersion(version); err == nil {
		v = "v" + parsed.String()
	}
	return fmt.Sprintf("holocron %s (built %s, %s %s/%s)", v, buildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// parseVersion accepts release tags with or without a leading "v"
func parseVersion(v string) (semver.Version, error) {
	parsed, err := semver.ParseTolerant(v)
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid version %q: %w", v, err)
	}
	return parsed, nil
}

// skipInitialize replaces initializeApp for commands that need no config
func skipInitialize(cmd *cobra.Command, args []string) error {
	return nil
}
