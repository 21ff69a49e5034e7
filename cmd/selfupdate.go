package cmd

import (
	"context"
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug is the repository releases are fetched from.
var githubRepoSlug = "botctl/botctl"

// release is the part of a GitHub release self-update acts on.
type release struct {
	version   string
	newer     bool
	assetURL  string
	assetName string
}

// For mocking in tests
var (
	findLatestRelease = func(ctx context.Context, slug, current string) (*release, bool, error) {
		latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(slug))
		if err != nil || !found {
			return nil, found, err
		}
		return &release{
			version:   latest.Version(),
			newer:     !latest.LessOrEqual(current),
			assetURL:  latest.AssetURL,
			assetName: latest.AssetName,
		}, true, nil
	}
	executablePath = selfupdate.ExecutablePath
	applyUpdate    = func(ctx context.Context, rel *release, exe string) error {
		return selfupdate.UpdateTo(ctx, rel.assetURL, rel.assetName, exe)
	}
)

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update botctl to the latest version",
		Long: `Checks for the latest release of botctl on GitHub and
replaces the running binary when a newer version is found.
Running bots are not touched; restart 'botctl serve' afterwards.`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	current := rootCmd.Version
	if current == "" || current == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	latest, found, err := findLatestRelease(ctx, githubRepoSlug, current)
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for %s could not be found on GitHub", githubRepoSlug)
	}
	if !latest.newer {
		fmt.Fprintf(out, "Current version (%s) is the latest.\n", current)
		return nil
	}

	exe, err := executablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	fmt.Fprintf(out, "Updating botctl from %s to %s...\n", current, latest.version)
	if err := applyUpdate(ctx, latest, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}
	fmt.Fprintf(out, "Successfully updated to version %s\n", latest.version)
	return nil
}
