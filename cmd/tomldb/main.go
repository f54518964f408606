// Command tomldb applies one mutation to a TOML data file.
//
// Usage:
//
//	tomldb [flags] <key> [-- <value>]
//
// The key is mutated inside the table named by -t, with the type named
// by -X. Everything after -- is the raw value (or the import path when
// -X import). Without --modify, existing values are never overwritten;
// with --remove --modify, they are overwritten unconditionally.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"

	"github.com/jpl-au/tomldb"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "tomldb: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("tomldb", flag.ContinueOnError)
	dataPath := fs.String("db", "config.toml", "data file path")
	journalPath := fs.String("journal", "", "journal file path (default <db>.journal)")
	table := fs.StringP("table", "t", "", "target table path")
	typeTok := fs.StringP("value-type", "X", "str", "value type: str|bool|float|int|obj|append|import")
	extTok := fs.StringP("extended-value-type", "Y", "", "extended value type")
	remove := fs.BoolP("remove", "r", false, "remove the key (dry run unless --modify)")
	modify := fs.BoolP("modify", "m", false, "allow modification of existing values")
	timeout := fs.Duration("timeout", 5*time.Second, "lock acquisition timeout")
	history := fs.Bool("history", false, "snapshot the previous data file on commit")
	sync := fs.Bool("sync", false, "fsync after commit writes")
	verbose := fs.BoolP("verbose", "v", false, "log resolved actions")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:   level,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("missing key argument")
	}

	// Rebuild the request through the library's argv parser so the CLI
	// and the journal replay path agree on every detail.
	args := []string{"-t", *table, "-X", *typeTok}
	if *extTok != "" {
		args = append(args, "-Y", *extTok)
	}
	if *remove {
		args = append(args, "--remove")
	}
	if *modify {
		args = append(args, "--modify")
	}
	args = append(args, rest[0])
	if len(rest) > 1 {
		args = append(args, "--", strings.Join(rest[1:], " "))
	}
	req, err := tomldb.ParseRequestArgs(args)
	if err != nil {
		return err
	}
	if *remove && *modify && !req.HasValue() {
		return fmt.Errorf("%w: --remove --modify is a forced overwrite and needs a value after --", tomldb.ErrNoValue)
	}

	db, err := tomldb.Open(*dataPath, *journalPath, tomldb.Config{
		SyncWrites:  *sync,
		KeepHistory: *history,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	tx := db.Begin()
	defer tx.Close()

	journal, err := tx.Write(ctx)
	if err != nil {
		return err
	}
	journal.OnView = func(req *tomldb.Request, item *tomldb.Item) {
		fmt.Println(item)
	}

	journal.Push(req)
	journal.Evaluate()

	for _, act := range journal.Evaluated() {
		logger.Debug("resolved", "action", act.Kind.String(), "request", act.Req.String())
		switch act.Kind {
		case tomldb.ActionRejectTypeMismatch, tomldb.ActionRejectValueMismatch:
			logger.Warn("rejected", "action", act.Kind.String(), "request", act.Req.String())
		case tomldb.ActionWouldRemove:
			fmt.Printf("would remove '%s' (re-run with --modify)\n", req.Key)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	return journal.Commit(tx)
}
