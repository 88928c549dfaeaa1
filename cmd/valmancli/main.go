package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %q\n\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(2)
	}
	if err := cmd(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printUsage writes this application usage summary.
func printUsage(w io.Writer) {
	var cmds []string
	for name := range commands {
		cmds = append(cmds, name)
	}
	sort.Strings(cmds)
	fmt.Fprintf(w, `Usage:
	%s <cmd> [options]

Use <cmd> -h to display help for each command.
Available commands: %s
`, os.Args[0], strings.Join(cmds, ", "))
}

// commands is a global register of all commands provided by this program. Each
// command should use flag package to support options and provide help text.
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"list":     cmdList,
	"pending":  cmdPending,
	"session":  cmdSession,
	"register": cmdRegister,
	"remove":   cmdRemove,
	"setkeys":  cmdSetKeys,
	"keygen":   cmdKeygen,
}
