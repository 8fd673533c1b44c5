// Command tri expands tri! invocations and runs tri-script programs.
package main

import (
	"fmt"
	"os"

	"github.com/EMcConnell20/tri-ton/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
