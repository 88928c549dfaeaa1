package server

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/iov-one/valman/errors"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/sync/errgroup"
)

const (
	flagBind  = "bind"
	flagDebug = "debug"

	// DefaultBind is where the ABCI server listens if not told otherwise.
	DefaultBind = "tcp://localhost:26658"
)

type startArgs struct {
	bind  string
	debug bool
}

func parseStartArgs(args []string) (startArgs, error) {
	var res startArgs
	startFlags := flag.NewFlagSet("start", flag.ContinueOnError)
	startFlags.StringVar(&res.bind, flagBind, DefaultBind, "address server listens on")
	startFlags.BoolVar(&res.debug, flagDebug, false, "call stack returned on error")
	if err := startFlags.Parse(args); err != nil {
		return res, errors.Wrap(errors.ErrInput, err.Error())
	}
	return res, nil
}

// AppGenerator lets us lazily initialize the app, using the home dir and
// the logger set up by the caller.
type AppGenerator func(home string, logger log.Logger, debug bool) (abci.Application, error)

// StartCmd runs the ABCI server until the process receives SIGINT or
// SIGTERM.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, gen, logger, home, args)
}

// Run runs the ABCI server until ctx is done.
func Run(ctx context.Context, gen AppGenerator, logger log.Logger, home string, args []string) error {
	opts, err := parseStartArgs(args)
	if err != nil {
		return err
	}
	app, err := gen(home, logger, opts.debug)
	if err != nil {
		return errors.Wrap(err, "create application")
	}

	svr, err := server.NewServer(opts.bind, "socket", app)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "create listener: "+err.Error())
	}
	svr.SetLogger(logger.With("module", "abci-server"))

	logger.Info("Starting ABCI app", "bind", opts.bind)
	if err := svr.Start(); err != nil {
		return errors.Wrap(errors.ErrState, "start server: "+err.Error())
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-svr.Quit():
		}
		logger.Info("Stopping ABCI app")
		if svr.IsRunning() {
			return svr.Stop()
		}
		return nil
	})
	return g.Wait()
}
