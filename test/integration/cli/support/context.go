// Package support holds shared state and step definitions for the CLI
// integration suite.
package support

import (
	"bytes"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scalevision/scaleread/cmd/scaleread/cmd"
)

// TestContext carries the outcome of the last in-process CLI invocation.
type TestContext struct {
	LastArgs   []string
	LastOutput string
	LastError  error
}

// NewTestContext creates a fresh context for one scenario.
func NewTestContext() *TestContext {
	return &TestContext{}
}

// RunCommand executes the CLI in-process with the given argument string and
// captures its combined output.
func (testCtx *TestContext) RunCommand(argLine string) error {
	root := cmd.GetRootCommand()
	resetFlags(root)

	args := strings.Fields(argLine)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	testCtx.LastArgs = args
	testCtx.LastError = root.Execute()
	testCtx.LastOutput = out.String()
	return nil
}

// resetFlags restores flag defaults across the command tree so values from a
// previous scenario cannot leak into the next one.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
