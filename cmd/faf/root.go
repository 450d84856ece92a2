package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/marek/faf/config"
	"github.com/marek/faf/internal/capture"
	"github.com/marek/faf/internal/llm"
	"github.com/marek/faf/internal/record"
)

var rootCmd = &cobra.Command{
	Use:   "faf [text...]",
	Short: "faf — fire-and-forget thought capture",
	Long: `faf takes a quick thought, asks an LLM which action it should become,
and drops the result as a JSON action file for downstream automation.

  faf "remind me to call the dentist tomorrow"
  echo "https://go.dev/blog/error-syntax" | faf`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runCapture,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(serviceCmd)
}

func runCapture(_ *cobra.Command, args []string) error {
	input, err := readInput(args)
	if err != nil {
		return err
	}
	if input == "" {
		// Interactive terminal with nothing to capture. Not an error.
		fmt.Fprintln(os.Stderr, "no message provided")
		return nil
	}

	a, err := buildApp()
	if err != nil {
		return err
	}

	res, err := a.svc.Capture(context.Background(), input)
	if err != nil {
		return err
	}
	if res.Stored == nil {
		if res.Reply != "" {
			return fmt.Errorf("no action selected: %s", res.Reply)
		}
		return fmt.Errorf("no action selected")
	}

	st := res.Stored
	log.Printf("saved %s (%s), %d tokens", st.Record.Command, humanize.Bytes(uint64(st.Size)), res.Usage.TotalTokens)
	fmt.Println(st.Path)
	return nil
}

// readInput joins the argument text, or reads piped stdin when no
// arguments were given. An interactive terminal with no arguments
// yields the empty string.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return "", nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// app holds the wired pieces every front door needs.
type app struct {
	cfg   *config.Config
	store *record.Materializer
	svc   *capture.Service
}

func buildApp() (*app, error) {
	cfg := config.Load()
	if err := cfg.CheckCredentials(); err != nil {
		return nil, err
	}

	apiKey := cfg.AnthropicKey
	if cfg.LLMProvider == "openai" {
		apiKey = cfg.OpenAIKey
	}

	client, err := llm.NewClient(llm.ProviderConfig{
		Provider:  cfg.LLMProvider,
		APIKey:    apiKey,
		AuthToken: cfg.AnthropicToken,
		Model:     cfg.LLMModel,
		BaseURL:   cfg.OllamaBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating LLM client: %w", err)
	}

	store, err := record.NewMaterializer(cfg.OutputDir, llm.CaptureTools)
	if err != nil {
		return nil, fmt.Errorf("creating materializer: %w", err)
	}

	rules, err := cfg.CustomRules()
	if err != nil {
		log.Printf("warning: %v", err)
	}

	return &app{
		cfg:   cfg,
		store: store,
		svc:   capture.New(client, store, cfg.UserName, rules),
	}, nil
}
