package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marek/faf/internal/discord"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Discord capture bot",
	RunE:  runBot,
}

func runBot(_ *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	if a.cfg.DiscordToken == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN is not set")
	}

	bot, err := discord.NewBot(a.cfg.DiscordToken, a.svc)
	if err != nil {
		return fmt.Errorf("starting Discord bot: %w", err)
	}
	defer bot.Close()

	log.Println("bot is running. Press Ctrl+C to exit.")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down.")
	return nil
}
