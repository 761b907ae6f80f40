// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/playerstats/internal/app"
	"github.com/law-makers/playerstats/internal/config"
	"github.com/law-makers/playerstats/internal/ui"
	urlutil "github.com/law-makers/playerstats/internal/utils/url"
)

// Version is the CLI version reported by --version
const Version = "0.1.0"

// NoURLMessage is printed to stderr when no http(s) argument is given
const NoURLMessage = "No URL provided, cannot proceed!"

// NewRootCmd builds the playerstats command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playerstats [flags] [url]",
		Short: "Download player stat tables from a web page as JSON",
		Long: `Playerstats fetches a single web page, finds every player table inside a
paragraph and writes one JSON record per player.

Each table carries the player's name, key techniques and location in its
first three rows, followed by a level header row and one row per stat.`,
		Example: `  # Scrape a roster page into ../player-data.json next to the binary
  playerstats http://example.com/roster

  # Write somewhere else
  playerstats -o players.json https://example.com/roster

  # Render script-built tables in headless Chrome
  playerstats --mode spa --wait 2 https://example.com/roster`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDownload,
	}

	// Register centralized flags
	config.RegisterFlags(cmd)

	// Customize help and version flag descriptions
	cmd.Flags().BoolP("help", "h", false, "Help for playerstats")
	cmd.Flags().Bool("version", false, "Version for playerstats")

	// Disable the default completion command
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.SetHelpFunc(customHelpFunc)
	cmd.SetUsageFunc(customUsageFunc)

	// Ensure app is closed after command runs
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), a.Config.HTTPTimeout)
		defer cancel()
		err := a.Close(ctx)
		SetApp(cmd, nil)
		return err
	}

	return cmd
}

// Execute runs the root command and returns the process exit code.
// This is called by main.main().
func Execute(ctx context.Context) int {
	ui.ConfigureColor(os.Stdout)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := execute(ctx, NewRootCmd(), os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("playerstats failed")
		return 1
	}
	return 0
}

// execute runs cmd with args after dropping flags it does not define
func execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	cmd.SetArgs(dropUnknownFlags(cmd, args))
	return cmd.ExecuteContext(ctx)
}

func runDownload(cmd *cobra.Command, args []string) error {
	targetURL, ok := urlutil.FindURLArg(args)
	if !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Error(NoURLMessage))
		printUsage(cmd.OutOrStdout(), cmd)
		return nil
	}

	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	SetApp(cmd, a)

	log.Debug().
		Str("url", targetURL).
		Str("mode", cfg.Mode).
		Str("output", cfg.OutputPath).
		Msg("Downloading player stats")

	n, err := a.DownloadPlayerStats(cmd.Context(), targetURL, cfg.OutputPath)
	if err != nil {
		return err
	}

	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s Saved %d players to %s\n", ui.Success("✓"), n, cfg.OutputPath)
	}
	return nil
}

// customHelpFunc provides a colorized help output
func customHelpFunc(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()

	// Header with command name
	fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorBold+ui.ColorCyan, strings.ToUpper(cmd.Name()), ui.ColorReset)

	if cmd.Short != "" {
		fmt.Fprintf(w, "%s\n", cmd.Short)
	}

	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", wrapText(cmd.Long, 80))
	}

	fmt.Fprintf(w, "\n%sUsage%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)
	}

	if cmd.HasExample() {
		fmt.Fprintf(w, "\n%sExamples%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		lastWasCommand := false
		for _, example := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(example)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "#") {
				// Add spacing before comment if previous line was a command
				if lastWasCommand {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "  %s%s%s\n", ui.ColorDim, trimmed, ui.ColorReset)
				lastWasCommand = false
			} else {
				fmt.Fprintf(w, "  %s$ %s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
				lastWasCommand = true
			}
		}
	}

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(w, "\n%sFlags%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		printFlagsTo(w, cmd.LocalNonPersistentFlags().FlagUsages())
	}

	if cmd.HasAvailablePersistentFlags() {
		fmt.Fprintf(w, "\n%sGlobal Flags%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		printFlagsTo(w, cmd.PersistentFlags().FlagUsages())
	}

	fmt.Fprintln(w)
}

// customUsageFunc provides a colorized usage output on stderr
func customUsageFunc(cmd *cobra.Command) error {
	printUsage(cmd.ErrOrStderr(), cmd)
	return nil
}

func printUsage(w io.Writer, cmd *cobra.Command) {
	fmt.Fprintf(w, "\n%sUsage%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
	fmt.Fprintf(w, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)

	if cmd.HasAvailableFlags() {
		fmt.Fprintf(w, "\n%sFlags%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		printFlagsTo(w, cmd.Flags().FlagUsages())
	}

	fmt.Fprintf(w, "\n%sUse \"%s%s%s %s--help%s\" for more information.%s\n",
		ui.ColorDim,
		ui.ColorCyan, cmd.CommandPath(), ui.ColorReset+ui.ColorDim,
		ui.ColorGreen, ui.ColorReset+ui.ColorDim,
		ui.ColorReset)
}

// printFlagsTo prints flag usages with color formatting to the specified writer
func printFlagsTo(w io.Writer, flagUsages string) {
	lines := strings.Split(flagUsages, "\n")

	// Find maximum flag length for alignment
	maxFlagLen := 0
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "-") {
			flagPart, _, _ := strings.Cut(trimmed, "  ")
			if n := len(strings.TrimSpace(flagPart)); n > maxFlagLen {
				maxFlagLen = n
			}
		}
	}

	// Set minimum width for alignment
	if maxFlagLen < 28 {
		maxFlagLen = 28
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		trimmed := strings.TrimLeft(line, " ")

		if !strings.HasPrefix(trimmed, "-") {
			// Continuation line (description continues)
			fmt.Fprintf(w, "%s%s%s%s\n", strings.Repeat(" ", maxFlagLen+4), ui.ColorDim, trimmed, ui.ColorReset)
			continue
		}

		flagPart, descPart, ok := strings.Cut(trimmed, "  ")
		if !ok {
			fmt.Fprintf(w, "  %s%s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
			continue
		}
		flagPart = strings.TrimSpace(flagPart)
		padding := strings.Repeat(" ", maxFlagLen-len(flagPart)+2)
		fmt.Fprintf(w, "  %s%s%s%s%s%s%s\n",
			ui.ColorGreen, flagPart, ui.ColorReset,
			padding,
			ui.ColorDim, strings.TrimSpace(descPart), ui.ColorReset)
	}
}

// wrapText wraps text at the specified width while preserving paragraphs
func wrapText(text string, width int) string {
	var wrappedParagraphs []string

	for _, para := range strings.Split(text, "\n\n") {
		var current strings.Builder
		var wrappedLines []string

		for _, word := range strings.Fields(para) {
			switch {
			case current.Len() == 0:
				current.WriteString(word)
			case current.Len()+1+len(word) <= width:
				current.WriteString(" ")
				current.WriteString(word)
			default:
				wrappedLines = append(wrappedLines, current.String())
				current.Reset()
				current.WriteString(word)
			}
		}
		if current.Len() > 0 {
			wrappedLines = append(wrappedLines, current.String())
		}

		if len(wrappedLines) > 0 {
			wrappedParagraphs = append(wrappedParagraphs, strings.Join(wrappedLines, "\n"))
		}
	}

	return strings.Join(wrappedParagraphs, "\n\n")
}
