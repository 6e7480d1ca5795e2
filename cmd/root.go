package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fragtion/github-release-fetcher/config"
	"github.com/fragtion/github-release-fetcher/internal/filter"
	"github.com/fragtion/github-release-fetcher/internal/logger"
	"github.com/fragtion/github-release-fetcher/internal/manifest"
	"github.com/fragtion/github-release-fetcher/internal/transfer"
	"github.com/fragtion/github-release-fetcher/internal/verify"
)

var (
	rootRelease  string
	rootDownload bool
	rootOutput   string
	rootInclude  []string
	rootExclude  []string
)

var rootCmd = &cobra.Command{
	Use:          "grf <repository_url>",
	Short:        "List and optionally download the file assets of a GitHub release.",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args[0])
	},
}

func Execute() {
	config.Init()
	logger.SetLevel(viper.GetString("log.level"))

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&rootRelease, "release", "r", "", "Specific release tag (defaults to the latest release)")
	rootCmd.Flags().BoolVarP(&rootDownload, "download", "d", false, "Download the selected assets")
	rootCmd.Flags().StringVarP(&rootOutput, "output", "o", "", "Output directory for downloaded files")
	rootCmd.Flags().StringSliceVarP(&rootInclude, "include", "i", nil, "Only process assets with these names")
	rootCmd.Flags().StringSliceVarP(&rootExclude, "exclude", "e", nil, "Never process assets with these names")

	rootCmd.AddCommand(versionCmd)
}

func run(ctx context.Context, rawURL string) error {
	owner, repo, urlTag, err := manifest.ParseRepoURL(rawURL)
	if err != nil {
		return err
	}

	tag := rootRelease
	if urlTag != "" {
		if tag != "" && tag != urlTag {
			return fmt.Errorf("conflicting release tags: URL specifies %q, --release specifies %q", urlTag, tag)
		}
		tag = urlTag
	}

	token := viper.GetString("github.token")
	src := manifest.NewGitHubSource(
		&http.Client{Timeout: viper.GetDuration("http.timeout")},
		viper.GetString("github.api_base"),
		token,
	)

	// Resolution errors are fatal to the whole run: nothing to select or
	// transfer without a manifest.
	rel, err := src.Resolve(ctx, owner, repo, tag)
	if err != nil {
		return err
	}

	crit := filter.Criteria{Include: rootInclude, Exclude: rootExclude}
	selected := filter.Apply(rel.Assets, crit)
	printListing(rel, selected, crit)

	if !rootDownload || len(selected) == 0 {
		return nil
	}

	outDir := rootOutput
	if outDir == "" {
		outDir = viper.GetString("output.dir")
	}
	destDir := filepath.Join(outDir, rel.TagName)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	fmt.Printf("\nDownloading files to: %s\n\n", destDir)

	engine := transfer.NewEngine(
		&http.Client{},
		token,
		viper.GetInt("transfer.chunk_size"),
		transfer.NewConsoleReporter(os.Stdout),
	)

	// Assets are processed strictly one at a time, in selection order.
	// A failed asset never aborts its siblings.
	summary := verify.NewSummary()
	for _, asset := range selected {
		outcome := engine.Transfer(ctx, asset, destDir)
		if outcome.Kind == transfer.Failed {
			logger.Log.Error("transfer failed", "asset", asset.Name, "err", outcome.Err)
		}
		summary.Add(verify.Refine(outcome))
	}

	fmt.Println("\nSummary:")
	fmt.Print(summary.Render())

	if summary.Failed() {
		return fmt.Errorf("%d of %d assets did not complete cleanly", summary.FailedCount(), summary.Len())
	}
	return nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
)

func printListing(rel *manifest.Release, selected []manifest.Asset, crit filter.Criteria) {
	fmt.Println(titleStyle.Render("Release: " + rel.TagName))

	switch {
	case len(rel.Assets) == 0:
		fmt.Println(mutedStyle.Render("  release has no assets"))
	case len(selected) == 0:
		fmt.Println(mutedStyle.Render("  no assets match the include/exclude filters"))
	default:
		fmt.Println("Files:")
		for _, a := range selected {
			fmt.Printf("  %s %s\n", a.Name, mutedStyle.Render("("+humanize.IBytes(uint64(a.Size))+")"))
		}
	}

	if crit.Empty() {
		return
	}
	for _, a := range rel.Assets {
		if !crit.Match(a.Name) {
			logger.Log.Debug("asset "+transfer.SkippedFiltered.String(), "name", a.Name)
		}
	}
}
