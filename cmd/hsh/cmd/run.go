package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/hermetic-sh/hsh"
)

var (
	runEval    string
	runCwd     string
	runJSON    bool
	runErrexit bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a script file, inline command, or stdin",
	Long: `Execute a script read from a file, from -c, or from stdin if neither
is given.

Examples:
  hsh run script.sh
  hsh run -c 'echo "hello $1"' -- world
  echo 'echo piped' | hsh run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEval, "command", "c", "", "run SCRIPT instead of reading a file")
	runCmd.Flags().StringVar(&runCwd, "cwd", "/", "initial working directory seeded into PWD")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "emit {stdout,stderr,exitCode} as JSON instead of writing streams directly")
	runCmd.Flags().BoolVarP(&runErrexit, "errexit", "e", false, "prepend \"set -e\" to the script")
	runCmd.Flags().StringVar(&limitsFile, "limits-file", "", "YAML file overriding default execution limits")
}

func runScript(cmd *cobra.Command, args []string) error {
	src, scriptName, posArgs, err := readScript(runEval, args)
	if err != nil {
		return err
	}

	limits, err := loadLimits()
	if err != nil {
		return err
	}

	stdout, stderr, exitCode, runErr := hsh.Run(src, hsh.Options{
		Cwd:        runCwd,
		Env:        hostEnviron(),
		Args:       append([]string{scriptName}, posArgs...),
		ScriptName: scriptName,
		Limits:     limits,
		Errexit:    runErrexit,
	})

	if runJSON {
		doc := "{}"
		doc, _ = sjson.Set(doc, "stdout", stdout)
		doc, _ = sjson.Set(doc, "stderr", stderr)
		doc, _ = sjson.Set(doc, "exitCode", exitCode)
		fmt.Fprintln(cmd.OutOrStdout(), string(pretty.Pretty([]byte(doc))))
	} else {
		io.WriteString(cmd.OutOrStdout(), stdout)
		io.WriteString(cmd.ErrOrStderr(), stderr)
	}

	if runErr != nil {
		return runErr
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

// hostEnviron seeds the interpreter's exported variables from the CLI
// process's own environment; hsh.Run itself never reads os.Environ,
// keeping the library hermetic for callers that don't want that.
func hostEnviron() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// readScript resolves the script source from -c, a file argument, or
// stdin, in that precedence order, returning $0 and the remaining operands
// as positional parameters.
func readScript(eval string, args []string) (src, scriptName string, posArgs []string, err error) {
	if eval != "" {
		posArgs = args
		return eval, "hsh", posArgs, nil
	}
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", nil, fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), args[0], args[1:], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", nil, fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), "hsh", nil, nil
}
