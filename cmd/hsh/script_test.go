package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/hermetic-sh/hsh/cmd/hsh/cmd"
)

// TestMain lets testscript re-exec this test binary as the "hsh" command
// itself, so each .txtar file drives the real CLI rather than a stand-in.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"hsh": func() int {
			if err := cmd.Execute(); err != nil {
				return 1
			}
			return 0
		},
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
