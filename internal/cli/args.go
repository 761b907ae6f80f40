package cli

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// dropUnknownFlags removes flags the command does not define so the target
// URL may appear anywhere in args. Unknown flags never take a value; use
// --name=value to pass one. Everything after "--" is kept as is.
func dropUnknownFlags(cmd *cobra.Command, args []string) []string {
	kept := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--":
			return append(kept, args[i:]...)

		case strings.HasPrefix(arg, "--"):
			name, _, hasValue := strings.Cut(arg[2:], "=")
			f := longFlag(cmd, name)
			if f == nil {
				log.Warn().Str("flag", arg).Msg("Ignoring unknown flag")
				continue
			}
			kept = append(kept, arg)
			if !hasValue && takesValue(f) && i+1 < len(args) {
				i++
				kept = append(kept, args[i])
			}

		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			known, needsNext := scanShorthands(cmd, arg[1:])
			if !known {
				log.Warn().Str("flag", arg).Msg("Ignoring unknown flag")
				continue
			}
			kept = append(kept, arg)
			if needsNext && i+1 < len(args) {
				i++
				kept = append(kept, args[i])
			}

		default:
			kept = append(kept, arg)
		}
	}

	return kept
}

// scanShorthands checks a cluster such as "vq" or "ofile.json". It reports
// whether every shorthand before an inline value is defined, and whether
// the last one expects its value in the next argument.
func scanShorthands(cmd *cobra.Command, cluster string) (known, needsNext bool) {
	for i := 0; i < len(cluster); i++ {
		f := shortFlag(cmd, cluster[i:i+1])
		if f == nil {
			return false, false
		}
		if takesValue(f) {
			return true, i == len(cluster)-1
		}
	}
	return true, false
}

func takesValue(f *pflag.Flag) bool {
	return f.NoOptDefVal == ""
}

func longFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f
	}
	return cmd.PersistentFlags().Lookup(name)
}

func shortFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.Flags().ShorthandLookup(name); f != nil {
		return f
	}
	return cmd.PersistentFlags().ShorthandLookup(name)
}
