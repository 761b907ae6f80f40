package config

import "github.com/spf13/cobra"

// RegisterFlags registers the CLI flags read by Load on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Write logs as JSON lines")
	cmd.PersistentFlags().String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("timeout", DefaultHTTPTimeout.String(), "Set hard timeout for the page fetch")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")

	cmd.Flags().StringP("output", "o", "", "Output JSON file (default: "+DefaultOutputName+" next to the executable)")
	cmd.Flags().String("selector", DefaultTableSelector, "CSS selector matching candidate player tables")
	cmd.Flags().StringP("mode", "m", DefaultMode, "Fetch engine: static or spa")
	cmd.Flags().StringArrayP("header", "H", []string{}, "Custom headers (e.g., -H \"Cookie: a=b\")")
	cmd.Flags().Int("wait", DefaultWaitSeconds, "Seconds to let scripts settle before reading the page (spa mode)")
	cmd.Flags().String("chrome-path", "", "Path to the Chrome executable (spa mode)")
}
