// Command toyc is the compiler's entry point, implementing spec.md §6's
// CLI contract: `toyc <path> [-o <output>] [-t <target-triple>]`.
// Grounded on the teacher's main.go top-level run/os.Exit shape; the flag
// parser itself is promoted to github.com/spf13/cobra per SPEC_FULL.md's
// AMBIENT STACK section.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"toyc/internal/driver"
	"toyc/internal/util"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opt util.Options

	cmd := &cobra.Command{
		Use:          "toyc <path>",
		Short:        "Compile a toy JavaScript/TypeScript-flavored source file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opt.Src = args[0]
			if err := driver.Run(opt); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opt.Out, "output", "o", "", "emit a static executable at <file> via the external linker; default is JIT-execute in-process")
	flags.StringVarP(&opt.Target, "target", "t", "", "target triple for object emission (default x86_64-linux-musl)")
	flags.BoolVar(&opt.Tokens, "tokens", false, "lex only: print the token stream and exit")
	flags.BoolVar(&opt.AST, "ast", false, "parse only: print the instruction tree and exit")
	flags.BoolVarP(&opt.Verbose, "verbose", "v", false, "log compiler pass timings to stderr")

	return cmd
}
