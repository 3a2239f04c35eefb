package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/quells-bot/openai-chat/cmd/openai-chat/ask"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "openai-chat",
		Short:         "Chat completions from the command line",
		Long:          "openai-chat keeps a conversation transcript and sends it to an OpenAI-compatible chat completions endpoint.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(askcmder.NewAskCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "openai-chat %s\n", version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
