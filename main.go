package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/km-arc/go-extkit/app"
	kernel "github.com/km-arc/go-extkit/framework/app"
	"github.com/km-arc/go-extkit/framework/contrib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	envFiles []string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "extkit",
		Short:         "Host for independently contributed commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", nil, "dotenv files to load (default .env)")

	root.AddCommand(newServeCmd(g), newRunCmd(g), newListCmd(g))
	return root
}

// activate builds the application with the demo providers and activates it.
// The caller must Deactivate the returned application.
func activate(g *globalFlags) (*kernel.Application, error) {
	a, err := kernel.New(kernel.WithEnvFiles(g.envFiles...))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if err := a.Register(&app.AppServiceProvider{}); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if err := a.Activate(); err != nil {
		_ = a.Deactivate()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return a, nil
}

// ── serve ────────────────────────────────────────────────────────────────────

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the commands over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, g, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default APP_ADDR)")
	return cmd
}

func serve(ctx context.Context, g *globalFlags, addr string) (err error) {
	a, err := activate(g)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, a.Deactivate()) }()

	cfg, err := a.Config()
	if err != nil {
		return err
	}
	router, err := a.Router()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.App.Addr
	}

	log := a.Logger()
	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// ── run ──────────────────────────────────────────────────────────────────────

func newRunCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <command> [key=value...]",
		Short: "Run one contributed command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) (err error) {
			args, err := parseArgs(argv[1:])
			if err != nil {
				return err
			}
			a, err := activate(g)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Deactivate()) }()

			out, err := a.Execute(cmd.Context(), argv[0], args)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

// parseArgs turns key=value pairs into command arguments.
func parseArgs(pairs []string) (contrib.Args, error) {
	args := make(contrib.Args, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q is not key=value", p)
		}
		args[k] = v
	}
	return args, nil
}

// ── list ─────────────────────────────────────────────────────────────────────

func newListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the contributed commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, err := activate(g)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Deactivate()) }()

			cmds, err := a.Commands()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range cmds.List() {
				fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Title)
			}
			return w.Flush()
		},
	}
}
