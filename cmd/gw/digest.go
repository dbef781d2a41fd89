package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zulandar/groundwork/internal/config"
	"github.com/zulandar/groundwork/internal/notify"
	"github.com/zulandar/groundwork/internal/notify/discord"
	"github.com/zulandar/groundwork/internal/notify/slack"
)

func newDigestCmd() *cobra.Command {
	var (
		configPath string
		remote     bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send the schedule risk digest now",
		Long: "Builds the project's schedule digest and posts it to every configured chat\n" +
			"channel. With --dry-run the digest is printed instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd, configPath, remote, dryRun)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	cmd.Flags().BoolVar(&remote, "remote", false, "read from the REST server instead of the local database")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the digest instead of sending it")
	return cmd
}

func runDigest(cmd *cobra.Command, configPath string, remote, dryRun bool) error {
	cfg, p, err := loadReport(cmd.Context(), configPath, remote)
	if err != nil {
		return err
	}
	msg := notify.Format(notify.BuildDigest(p))

	out := cmd.OutOrStdout()
	if dryRun {
		printMessage(out, msg)
		return nil
	}

	notifiers, err := notifiersFromConfig(cfg)
	if err != nil {
		return err
	}
	if len(notifiers) == 0 {
		return fmt.Errorf("no notifiers configured; set notify.slack or notify.discord in %s, or use --dry-run", configPath)
	}
	if err := notify.Broadcast(cmd.Context(), msg, notifiers); err != nil {
		return err
	}
	for _, n := range notifiers {
		fmt.Fprintf(out, "Digest sent to %s\n", n.Name())
	}
	return nil
}

// notifiersFromConfig builds a notifier for every chat channel with both a
// token and a channel configured.
func notifiersFromConfig(cfg *config.Config) ([]notify.Notifier, error) {
	var notifiers []notify.Notifier
	if cfg.Notify.Slack.Enabled() {
		n, err := slack.New(slack.Opts{
			BotToken:  cfg.Notify.Slack.BotToken,
			ChannelID: cfg.Notify.Slack.ChannelID,
		})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	if cfg.Notify.Discord.Enabled() {
		n, err := discord.New(discord.Opts{
			BotToken:  cfg.Notify.Discord.BotToken,
			ChannelID: cfg.Notify.Discord.ChannelID,
		})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	return notifiers, nil
}

// printMessage renders a chat message as plain text.
func printMessage(out io.Writer, msg notify.Message) {
	fmt.Fprintln(out, msg.Text)
	for _, sec := range msg.Sections {
		fmt.Fprintf(out, "\n== %s ==\n", sec.Title)
		if sec.Body != "" {
			fmt.Fprintln(out, sec.Body)
		}
		for _, f := range sec.Fields {
			fmt.Fprintf(out, "  %s: %s\n", f.Name, f.Value)
		}
	}
}
