// Command mailseries renders a mail template for every record of a series
// and prints the messages or delivers them through configured facilities.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/mailseries/internal/runner"
	"github.com/dmitrymomot/mailseries/pkg/delivery"
	"github.com/dmitrymomot/mailseries/pkg/facility"
	"github.com/dmitrymomot/mailseries/pkg/hook"
	"github.com/dmitrymomot/mailseries/pkg/logger"
	"github.com/dmitrymomot/mailseries/pkg/mailer"
	"github.com/dmitrymomot/mailseries/pkg/render"
	"github.com/dmitrymomot/mailseries/pkg/storage"
)

// Version is reported in the User-Agent header of every message.
var Version = "dev"

// Exit codes.
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

// envConfig holds settings read from the environment and an optional .env file.
type envConfig struct {
	Sentry  logger.SentryConfig
	Storage storage.Config
	LogJSON bool `env:"MAILSERIES_LOG_JSON"`
}

type options struct {
	via             string
	selected        intList
	forceResend     bool
	noRecord        bool
	externalData    string
	wrap            bool
	textAlternative bool
	output          string
	lang            string
	verbose         counter
	template        string
	data            string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("mailseries", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: mailseries [flags] <template> <series.json>")
		fs.PrintDefaults()
	}

	fs.StringVar(&o.via, "via", "", "facility list (JSON or YAML); without it messages are printed")
	fs.Var(&o.selected, "n", "only process record `number` (repeatable, 1-based)")
	fs.BoolVar(&o.forceResend, "force-resend", false, "deliver again even where delivery succeeded before")
	fs.BoolVar(&o.noRecord, "no-record", false, "do not write delivery state back to the series file")
	fs.StringVar(&o.externalData, "external-data", "", "JSON value exposed to templates as .External")
	fs.BoolVar(&o.wrap, "wrap", false, "wrap plain text bodies at 72 columns")
	fs.BoolVar(&o.textAlternative, "text-alternative", false, "add a plain text part to HTML messages")
	fs.StringVar(&o.output, "o", "", "write printed messages to `file` instead of stdout")
	fs.StringVar(&o.lang, "lang", "en", "language for the title and number template helpers")
	fs.Var(&o.verbose, "v", "increase verbosity (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return nil, errors.New("expected a template and a series file")
	}
	o.template, o.data = fs.Arg(0), fs.Arg(1)
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "mailseries:", err)
		return exitUsage
	}

	_ = godotenv.Load()
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(stderr, "mailseries: environment:", err)
		return exitUsage
	}

	log, flush := logger.NewWithSentry(
		logger.Config{Output: stderr, JSON: cfg.LogJSON, Verbosity: int(opts.verbose)},
		cfg.Sentry,
	)
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithRunID(ctx, uuid.NewString())

	if err := execute(ctx, opts, cfg, log, stdout); err != nil {
		log.ErrorContext(ctx, "series aborted", slog.Any("error", err))
		return exitFatal
	}
	return exitOK
}

func execute(ctx context.Context, o *options, cfg envConfig, log *slog.Logger, stdout io.Writer) error {
	rcfg := runner.Config{
		Template:        o.template,
		DataPath:        o.data,
		Selected:        o.selected,
		ForceResend:     o.forceResend,
		SuppressPersist: o.noRecord,
	}
	if o.externalData != "" {
		if err := json.Unmarshal([]byte(o.externalData), &rcfg.External); err != nil {
			return fmt.Errorf("external data: %w", err)
		}
	}

	tag, err := language.Parse(o.lang)
	if err != nil {
		return fmt.Errorf("language %q: %w", o.lang, err)
	}

	asmOpts := []mailer.AssemblerOption{
		mailer.WithLogger(log),
		mailer.WithUserAgent("mailseries/" + Version),
	}
	if o.wrap {
		asmOpts = append(asmOpts, mailer.WithWrap())
	}
	if o.textAlternative {
		asmOpts = append(asmOpts, mailer.WithTextAlternative())
	}
	if cfg.Storage.Enabled() {
		s3, err := storage.New(cfg.Storage)
		if err != nil {
			return err
		}
		asmOpts = append(asmOpts, mailer.WithOpener(storage.RefPrefix, s3))
	}

	dir := filepath.Dir(o.template)
	runOpts := []runner.Option{
		runner.WithLogger(log),
		runner.WithAssembler(mailer.NewAssembler(asmOpts...)),
		runner.WithRenderer(render.New(os.DirFS(dir), render.WithLanguage(tag))),
		runner.WithHooks(hook.NewResolver(dir, hook.WithLogger(log))),
	}

	printing := true
	if o.via != "" {
		list, err := facility.Load(o.via)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			log.WarnContext(ctx, "facility list is empty, printing instead", slog.String("via", o.via))
		}
		printing = len(list) == 0
		tracker := delivery.NewTracker(facility.NewRegistry(list, nil), delivery.WithLogger(log))
		runOpts = append(runOpts, runner.WithTracker(tracker))
	}

	// -o only receives printed messages; delivery leaves the file alone.
	out := stdout
	if o.output != "" && printing {
		f, err := os.Create(o.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	runOpts = append(runOpts, runner.WithOutput(out))

	r, err := runner.New(rcfg, runOpts...)
	if err != nil {
		return err
	}
	_, err = r.Run(ctx)
	return err
}
