package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/groundwork/internal/dashboard"
	"github.com/zulandar/groundwork/internal/notify"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		remote     bool
		noDigest   bool
		skipQuiet  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON dashboard and the scheduled digest",
		Long: "Serves the read-only JSON dashboard and, when chat channels are configured,\n" +
			"posts the schedule digest on notify.digest_cron.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, serveOpts{
				configPath: configPath,
				port:       port,
				remote:     remote,
				noDigest:   noDigest,
				skipQuiet:  skipQuiet,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default dashboard.port)")
	cmd.Flags().BoolVar(&remote, "remote", false, "read from the REST server instead of the local database")
	cmd.Flags().BoolVar(&noDigest, "no-digest", false, "do not schedule digests")
	cmd.Flags().BoolVar(&skipQuiet, "skip-quiet", false, "skip scheduled digests when nothing is at risk")
	return cmd
}

type serveOpts struct {
	configPath string
	port       int
	remote     bool
	noDigest   bool
	skipQuiet  bool
}

func runServe(cmd *cobra.Command, opts serveOpts) error {
	cfg, src, closeSrc, err := openSource(opts.configPath, opts.remote)
	if err != nil {
		return err
	}
	defer closeSrc()

	reportOpts, err := reportOptions(cfg)
	if err != nil {
		return err
	}
	port := opts.port
	if port == 0 {
		port = cfg.Dashboard.Port
	}

	out := cmd.OutOrStdout()
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if !opts.noDigest {
		notifiers, err := notifiersFromConfig(cfg)
		if err != nil {
			return err
		}
		if len(notifiers) == 0 {
			fmt.Fprintln(out, "No chat channels configured; digests disabled")
		} else {
			sched, err := notify.NewScheduler(notify.SchedulerOpts{
				Spec:      cfg.Notify.DigestCron,
				Location:  cfg.Location(),
				Source:    src,
				ProjectID: cfg.ProjectID,
				Options:   reportOpts,
				Notifiers: notifiers,
				SkipQuiet: opts.skipQuiet,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Digest scheduled %q, next at %s\n",
				cfg.Notify.DigestCron, sched.Next(reportOpts.Clock.Now()).Format("2006-01-02 15:04 MST"))
			go func() {
				if err := sched.Run(ctx); err != nil {
					log.Printf("serve: digest scheduler: %v", err)
				}
			}()
		}
	}

	return dashboard.Start(ctx, dashboard.StartOpts{
		Source:  src,
		Options: reportOpts,
		Port:    port,
		Out:     out,
	})
}
