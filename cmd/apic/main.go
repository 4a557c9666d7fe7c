// Command apic is the compiler's CLI entry point: load -> resolve ->
// defgraph.IdentifyRecursion -> infer -> typecheck -> eval -> openapi,
// wiring together every internal package per SPEC_FULL.md's MODULE MAPPING.
// Flags follow spec.md §6's CLI surface (-m/-t/-b/-c/-v/-q) via
// github.com/spf13/cobra, the teacher's indirect dependency promoted to
// direct for this purpose.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info, set by ldflags during build, matching the teacher's
// cmd/ailang convention.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts compileOptions

	cmd := &cobra.Command{
		Use:     "apic",
		Short:   "Compile an API description module graph into an OpenAPI document",
		Version: fmt.Sprintf("%s (%s)", Version, Commit),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Main, "main", "m", "", "main module path or URL (overrides config [api].main)")
	flags.StringVarP(&opts.Target, "target", "t", "", "target dialect (only \"openapi3\" is implemented)")
	flags.StringVarP(&opts.Base, "base", "b", "", "base directory a relative main module path resolves against")
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "path to a TOML config file ([api] table)")
	flags.StringVarP(&opts.Out, "out", "o", "", "output path for the rendered document (default: stdout)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "print each compilation phase as it runs, stepping interactively")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress non-error output")

	return cmd
}
