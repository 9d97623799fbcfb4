package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/guiyumin/vlink/internal/core/config"
	"github.com/guiyumin/vlink/internal/core/resolver"
	"github.com/guiyumin/vlink/internal/core/version"
	"github.com/spf13/cobra"
)

var (
	platformFlag string
	jsonOutput   bool
	plainOutput  bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "vlink [url]",
	Short: "Resolve TikTok, Facebook, Instagram and YouTube links to direct video URLs",
	Long: `Resolve a social-media post link into a direct, downloadable video URL.

Examples:
  vlink https://www.tiktok.com/@user/video/123
  vlink https://fb.watch/abc -p facebook
  vlink https://youtu.be/dQw4w9WgXcQ --json`,
	Version: version.Version,
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			return
		}
		if err := runResolve(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "platform (tiktok, facebook, instagram, youtube); detected from the URL when omitted")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the raw JSON result")
	rootCmd.Flags().BoolVar(&plainOutput, "plain", false, "disable the spinner")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every extraction attempt to stderr")
}

func Execute() error {
	return rootCmd.Execute()
}

// targetPlatform returns the explicit platform flag, or one detected from the URL
func targetPlatform(rawURL, explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}
	p, ok := resolver.DetectPlatform(rawURL)
	if !ok {
		return "", fmt.Errorf("could not detect platform for %s, pass one with -p (%s)", rawURL, platformList())
	}
	return string(p), nil
}

func platformList() string {
	names := make([]string, len(resolver.Platforms))
	for i, p := range resolver.Platforms {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func cliLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	return nil
}

func runResolve(rawURL string) error {
	cfg := config.LoadOrDefault()

	if !config.Exists() && !jsonOutput {
		fmt.Fprintln(os.Stderr, color.YellowString("No config file found, using defaults. Run 'vlink init'."))
	}

	platform, err := targetPlatform(rawURL, platformFlag)
	if err != nil {
		return err
	}

	svc, closeSvc, err := resolver.FromConfig(cfg, cliLogger())
	if err != nil {
		return err
	}
	defer closeSvc()

	var result resolver.VideoResult
	if jsonOutput || plainOutput || verbose {
		result = svc.Resolve(context.Background(), rawURL, platform)
	} else {
		result, err = runResolveWithSpinner(svc, rawURL, platform)
		if err != nil {
			return err
		}
	}

	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		printResult(result)
	}

	if !result.Usable() {
		return fmt.Errorf("%s", result.Error)
	}
	return nil
}

func printResult(r resolver.VideoResult) {
	if !r.Usable() {
		return
	}

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	green.Printf("✓ ")
	bold.Println(r.Title)
	fmt.Printf("  Platform:  %s\n", r.Platform.Name())
	fmt.Printf("  Author:    %s\n", r.Author)
	fmt.Printf("  Duration:  %s\n", r.Duration)
	fmt.Printf("  Quality:   %s\n", r.Quality)
	if r.NoWatermark != nil {
		watermark := "yes"
		if *r.NoWatermark {
			watermark = "no"
		}
		fmt.Printf("  Watermark: %s\n", watermark)
	}
	if r.Thumbnail != "" {
		fmt.Printf("  Thumbnail: %s\n", r.Thumbnail)
	}
	fmt.Println()
	cyan.Println(r.VideoURL)

	if len(r.Formats) > 1 {
		fmt.Println()
		bold.Println("Other formats:")
		for _, key := range sortedFormatKeys(r.Formats) {
			f := r.Formats[key]
			if f.URL == "" || f.URL == r.VideoURL {
				continue
			}
			label := f.Label
			if label == "" {
				label = key
			}
			fmt.Printf("  • %s %s\n", label, f.URL)
		}
	}
}
