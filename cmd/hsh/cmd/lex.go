package cmd

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/hermetic-sh/hsh/internal/lexer"
	"github.com/hermetic-sh/hsh/internal/token"
)

var lexEval string

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a script and print the resulting tokens",
	Long: `Tokenize (lex) a script and print the resulting tokens, one per line,
using kr/pretty for a readable struct dump. Useful for debugging the lexer
and understanding how a script is tokenized.`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEval, "command", "c", "", "tokenize SCRIPT instead of reading a file")
}

func lexScript(cmd *cobra.Command, args []string) error {
	src, _, _, err := readScript(lexEval, args)
	if err != nil {
		return err
	}

	l := lexer.New(src)
	count := 0
	for {
		tok := l.NextToken()
		fmt.Fprintln(cmd.OutOrStdout(), pretty.Sprint(tok))
		count++
		if tok.Type == token.EOF {
			break
		}
	}

	if errs := l.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(cmd.ErrOrStderr(), e.Error())
		}
		return fmt.Errorf("lexing produced %d error(s)", len(errs))
	}

	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d token(s)\n", count)
	}
	return nil
}
