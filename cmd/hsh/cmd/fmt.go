package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hermetic-sh/hsh/internal/lexer"
	"github.com/hermetic-sh/hsh/internal/parser"
	"github.com/hermetic-sh/hsh/internal/printer"
	"github.com/hermetic-sh/hsh/internal/shellerr"
)

var fmtEval string

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Reprint a script in canonical form",
	Long: `Parse a script and print it back out in a normalized form: consistent
indentation, one statement per line. Comments and original whitespace are
not preserved, since the parser does not retain them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().StringVarP(&fmtEval, "command", "c", "", "format SCRIPT instead of reading a file")
}

func runFmt(cmd *cobra.Command, args []string) error {
	src, _, _, err := readScript(fmtEval, args)
	if err != nil {
		return err
	}

	l := lexer.New(src)
	script, p := parser.ParseScript(l)

	lexErrs := shellerr.FromLexErrors(l.Errors(), "hsh")
	parseErrs := shellerr.FromParseErrors(p.Errors(), "hsh")
	if len(lexErrs)+len(parseErrs) > 0 {
		all := append(lexErrs, parseErrs...)
		fmt.Fprintln(cmd.ErrOrStderr(), shellerr.FormatErrors(all))
		return fmt.Errorf("parsing failed with %d error(s)", len(all))
	}

	fmt.Fprint(cmd.OutOrStdout(), printer.Print(script))
	return nil
}
