package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/integrail/ollama-client/internal/build"
	"github.com/integrail/ollama-client/pkg/console"
	"github.com/integrail/ollama-client/pkg/llm"
	"github.com/integrail/ollama-client/pkg/util"
)

func main() {
	var cfg console.Config
	cfg.Url = llm.DefaultOllamaURL
	if os.Getenv("OLLAMA_URL") != "" {
		cfg.Url = os.Getenv("OLLAMA_URL")
	}
	cfg.Model = llm.DefaultModel
	if os.Getenv("OLLAMA_MODEL") != "" {
		cfg.Model = os.Getenv("OLLAMA_MODEL")
	}

	rootCmd := &cobra.Command{
		Use:     "ollama-cli [prompt]",
		Version: build.Version,
		Short:   "Client for a locally running Ollama inference server",
		Long:    "Send prompts to a local Ollama server and print the generated text",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 0 {
				askOnce(cfg, strings.Join(args, " "))
				return
			}
			startConsole(cfg)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&cfg.Url, "url", "u", cfg.Url, "Ollama server URL")
	rootCmd.PersistentFlags().StringVarP(&cfg.Model, "model", "m", cfg.Model, "Model to generate with")
	rootCmd.PersistentFlags().StringVarP(&cfg.Timeout, "timeout", "t", "120s", "Max time to wait for a full response (duration, e.g. 300s)")
	rootCmd.PersistentFlags().StringVarP(&cfg.OutDir, "out", "o", "", "Directory to save responses to (default: temp dir)")
	rootCmd.PersistentFlags().StringSliceVarP(&cfg.Values, "value", "V", []string{}, "Values substituted for {{name}} placeholders in the prompt")

	err := rootCmd.Execute()
	if err != nil {
		panic(err)
	}
}

func askOnce(cfg console.Config, prompt string) {
	log := zap.Must(zap.NewProduction())
	defer func() { _ = log.Sync() }()

	client, err := llm.NewOllama(log, cfg.Url, cfg.Model, console.ParseTimeout(cfg.Timeout))
	if err != nil {
		panic(err)
	}
	res, err := client.Generate(context.Background(), util.ReplacePlaceholders(prompt, util.SliceToMap(cfg.Values)))
	if err != nil {
		panic(err)
	}
	fmt.Println(res)
}

func startConsole(cfg console.Config) {
	// zap output would fight with the TUI for the terminal
	c, err := console.BubbleConsole(context.Background(), zap.NewNop(), cfg)
	if err != nil {
		panic(err)
	}
	p := tea.NewProgram(c)

	if _, err := p.Run(); err != nil {
		panic(err)
	}
}
