// retreatctl is the operator CLI for the venue booking API. It drives the
// same session layer as any other client: reads go through the query cache,
// writes are validated locally before anything is sent, and status changes
// are checked against the booking's current state first.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Hasan-Al-Banna-Nahid/retreat/cache"
	"github.com/Hasan-Al-Banna-Nahid/retreat/client"
	"github.com/Hasan-Al-Banna-Nahid/retreat/config"
	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
	"github.com/Hasan-Al-Banna-Nahid/retreat/session"
)

type app struct {
	client  *client.Client
	session *session.Session
	out     printer
	stderr  io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if err := config.ReadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}
	cfg, err := config.LoadClient()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var output string
	var verbose bool
	flagSet := pflag.NewFlagSet("retreatctl", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "booking API base URL (RETREAT_API_URL)")
	flagSet.StringVar(&cfg.Token, "token", cfg.Token, "bearer token to use instead of the saved one (RETREAT_TOKEN)")
	flagSet.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "where login saves the token (RETREAT_TOKEN_FILE)")
	flagSet.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout (RETREAT_TIMEOUT)")
	flagSet.IntVar(&cfg.RetryAttempts, "retries", cfg.RetryAttempts, "retries for a failed read (RETREAT_RETRY_ATTEMPTS)")
	flagSet.DurationVar(&cfg.RetryDelay, "retry-delay", cfg.RetryDelay, "pause between read retries (RETREAT_RETRY_DELAY)")
	flagSet.StringVarP(&output, "output", "o", formatTable, "output format: table, json or yaml")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log requests and cache activity to stderr")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	rest := flagSet.Args()
	if help, _ := flagSet.GetBool("help"); help || len(rest) == 0 {
		printUsage(stderr, flagSet)
		return nil
	}
	cmd, ok := findCommand(rest[0])
	if !ok {
		printUsage(stderr, flagSet)
		return fmt.Errorf("unknown command %q", rest[0])
	}

	out, err := newPrinter(stdout, output)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	tokens, err := tokenStore(cfg)
	if err != nil {
		return err
	}
	c, err := client.New(cfg.APIURL,
		client.WithTimeout(cfg.Timeout),
		client.WithTokenStore(tokens),
		client.WithLogger(logger),
		client.OnUnauthorized(func() {
			fmt.Fprintln(stderr, "session expired or missing; run: retreatctl login")
		}),
	)
	if err != nil {
		return err
	}
	s := session.New(c, session.Options{
		Retry:  cache.RetryPolicy{Attempts: cfg.RetryAttempts, Delay: cfg.RetryDelay},
		Logger: logger,
	})
	defer s.Close()

	return cmd.run(ctx, &app{client: c, session: s, out: out, stderr: stderr}, rest[1:])
}

// tokenStore prefers an explicit token; otherwise the token lives in a file
// under the user's config directory so login persists across runs.
func tokenStore(cfg config.Client) (client.TokenStore, error) {
	if cfg.Token != "" {
		return client.NewMemoryTokens(cfg.Token), nil
	}
	path := cfg.TokenFile
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config directory (set RETREAT_TOKEN_FILE): %w", err)
		}
		path = filepath.Join(dir, "retreat", "token")
	}
	return &client.FileTokens{Path: path}, nil
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: retreatctl [flags] <command> [command flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, flagSet.FlagUsages())
}

func reportError(w io.Writer, err error) {
	var apiErr *models.Error
	if !errors.As(err, &apiErr) {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "error: %s\n", apiErr.UserMessage())
	names := make([]string, 0, len(apiErr.Fields))
	for name := range apiErr.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, apiErr.Fields[name])
	}
}
