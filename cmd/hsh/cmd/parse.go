package cmd

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/hermetic-sh/hsh/internal/lexer"
	"github.com/hermetic-sh/hsh/internal/parser"
	"github.com/hermetic-sh/hsh/internal/shellerr"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a script and print its AST",
	Long: `Parse a script and dump the resulting AST with kr/pretty. If parsing
fails, every lex/parse error is printed and the command exits nonzero.`,
	Args: cobra.MaximumNArgs(1),
	RunE: parseScript,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "command", "c", "", "parse SCRIPT instead of reading a file")
}

func parseScript(cmd *cobra.Command, args []string) error {
	src, _, _, err := readScript(parseEval, args)
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

	fmt.Fprintln(cmd.OutOrStdout(), pretty.Sprint(script))
	return nil
}
