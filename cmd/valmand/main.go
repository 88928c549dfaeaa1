package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/valman"
	"github.com/iov-one/valman/cmd/valmand/app"
	"github.com/iov-one/valman/commands/server"
	"github.com/kouhin/envflag"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome     = flag.String("valman-home", filepath.Join(os.ExpandEnv("$HOME"), ".valman"), "directory to store files under (env var: VALMAN_HOME)")
	flagLogLevel = flag.String("log-level", "info", "one of debug, info, error, none (env var: LOG_LEVEL)")
)

func init() {
	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("valmand")
	fmt.Println("        Validator set manager node")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Initialize app options in genesis file")
	fmt.Println("start     Run the abci server")
	fmt.Println("validate  Check the app state of genesis files")
	fmt.Println("version   Print the app version")
	fmt.Println("")
	flag.PrintDefaults()
}

func main() {
	if err := envflag.Parse(); err != nil {
		fmt.Printf("Error: %s\n\n", err)
		helpMessage()
		os.Exit(1)
	}
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	logger, err := newLogger(*flagLogLevel)
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = server.InitCmd(app.GenInitOptions, logger, *flagHome, rest)
	case "start":
		err = server.StartCmd(app.GenerateApp, logger, *flagHome, rest)
	case "validate":
		err = server.ValidateGenesis(app.NewExtensions().Initializer(), genesisPaths(rest))
	case "version":
		fmt.Println(valman.Version())
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}

func newLogger(level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "valman")
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt), nil
}

// genesisPaths defaults to the genesis file of the home directory.
func genesisPaths(args []string) []string {
	if len(args) == 0 {
		return []string{server.GenesisFile(*flagHome)}
	}
	return args
}
