package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/s0up4200/holocron/config"
)

const repositorySlug = "s0up4200/holocron"

var checkOnly bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update holocron to the latest release",
	Long: `Check GitHub for a newer release of holocron and replace the running
binary with it. Use --check to only report whether an update is available.`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = setupLogger(config.LoggingConfig{Level: "info", Format: "console", Color: true},
			isatty.IsTerminal(os.Stderr.Fd()))
		return nil
	},
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only check for a newer release")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	current, err := parseVersion(version)
	if err != nil {
		return fmt.Errorf("cannot update a development build: %w", err)
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repositorySlug))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return errors.New("no release found for this platform")
	}

	newer, err := isNewer(current.String(), latest.Version())
	if err != nil {
		return err
	}
	if !newer {
		fmt.Fprintf(out, "✓ holocron v%s is up to date\n", current)
		return nil
	}

	fmt.Fprintf(out, "A new release is available: v%s (current v%s)\n", latest.Version(), current)
	if checkOnly {
		fmt.Fprintf(out, "Release notes: %s\n", latest.URL)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	logger.Info().Str("asset", latest.AssetName).Str("path", exe).Msg("Downloading release")

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Fprintf(out, "✓ Updated to v%s\n", latest.Version())
	return nil
}

// isNewer reports whether the release version is strictly greater than current
func isNewer(current, release string) (bool, error) {
	c, err := parseVersion(current)
	if err != nil {
		return false, err
	}
	r, err := parseVersion(release)
	if err != nil {
		return false, err
	}
	return r.GT(c), nil
}
