package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/chatbridge"
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message to the model within a channel's conversation",
	Long: `Ask appends the message to the stored conversation of --channel, sends
the recent history to the configured provider and prints the reply. The
reply is stored as well, so repeated calls continue the conversation.`,
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

var (
	askChannel string
	askReset   bool
)

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askChannel, "channel", "cli", "Channel id whose conversation is used")
	askCmd.Flags().BoolVar(&askReset, "reset", false, "Forget the channel's conversation before asking")
}

func runAsk(cmd *cobra.Command, args []string) error {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" && !askReset {
		return errors.New("a message is required")
	}

	ctx := cmd.Context()
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.WithoutCancel(ctx)) }()

	bridge := chatbridge.New(func(o *chatbridge.Options) {
		o.Store = store
		o.Generator = generator
		o.SystemPrompt = cfg.SystemPrompt
		o.MaxHistory = cfg.OpenAIMaxHistory
		o.Logger = logger
	})

	if askReset {
		if _, err := bridge.Reset(ctx, askChannel); err != nil {
			return err
		}
		if message == "" {
			return nil
		}
	}

	resp, err := bridge.Reply(ctx, askChannel, message)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Content)
	return nil
}
