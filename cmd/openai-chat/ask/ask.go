package askcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/openai/openai-go/v3/option"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quells-bot/openai-chat/internal/config"
	"github.com/quells-bot/openai-chat/internal/logger"
	"github.com/quells-bot/openai-chat/llm"
)

const askLongDesc string = `Send one prompt to a chat completions model and print the reply.

Settings come from the environment (or a .env file): OPENAI_TOKEN is
required, OPENAI_MODEL, OPENAI_ENDPOINT, OPENAI_TIMEOUT, CHAT_TRANSPORT
and CHAT_DEBUG are optional. Flags override the environment.

Images may be URLs or local file paths. With --schema-file the reply is
parsed as JSON and printed indented.

Examples:
  openai-chat ask "What is the capital of Norway?"
  openai-chat ask --image photo.jpg --image https://example.com/b.png "Compare these"
  openai-chat ask --schema-file weather.json "Weather in Oslo?"`

const askShortDesc string = "Send a prompt and print the reply"

type askCommander struct {
	system     string
	images     []string
	schemaFile string
	model      string
	transport  string
	debug      bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	cmd.Flags().StringVarP(&cmder.system, "system", "s", "", "System message sent before the prompt")
	cmd.Flags().StringArrayVarP(&cmder.images, "image", "i", nil, "Image URL or file path to attach (repeatable)")
	cmd.Flags().StringVar(&cmder.schemaFile, "schema-file", "", "Path to a JSON Schema document for structured output")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model identifier (overrides OPENAI_MODEL)")
	cmd.Flags().StringVarP(&cmder.transport, "transport", "t", "", "Transport: http, sdk or bedrock (overrides CHAT_TRANSPORT)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}
	if c.model != "" {
		cfg.Model = c.model
	}
	if c.transport != "" {
		cfg.Transport = c.transport
	}
	if c.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Debug)
	defer log.Sync()

	transport, err := newTransport(ctx, cfg)
	if err != nil {
		return fmt.Errorf("could not create %s transport: %w", cfg.Transport, err)
	}

	opts := []llm.Option{
		llm.WithModel(cfg.Model),
		llm.WithTransport(transport),
		llm.WithLogger(log),
		llm.WithMiddleware(llm.LogRequests(log)),
	}
	if c.schemaFile != "" {
		schema, err := os.ReadFile(c.schemaFile)
		if err != nil {
			return fmt.Errorf("could not read schema file: %w", err)
		}
		opts = append(opts, llm.WithSchema(string(schema)))
	}

	session, err := llm.NewSession(cfg.Token, opts...)
	if err != nil {
		return err
	}
	log.Debug("session ready",
		zap.String("session_id", session.ID()),
		zap.String("model", session.Model()),
		zap.String("transport", cfg.Transport),
	)

	if c.system != "" {
		session.System(c.system)
	}

	var userOpts []llm.UserOption
	if len(c.images) > 0 {
		images := make([]any, len(c.images))
		for i, img := range c.images {
			images[i] = img
		}
		userOpts = append(userOpts, llm.WithImages(images...))
	}
	if err := session.User(strings.Join(args, " "), userOpts...); err != nil {
		return fmt.Errorf("could not add prompt: %w", err)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	reply, err := session.Send(ctx)
	if err != nil {
		return fmt.Errorf("chat completion failed: %w", err)
	}

	if !reply.Structured() {
		fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
		return nil
	}
	out, err := json.MarshalIndent(reply.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("could not format reply: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// newTransport builds the transport named by cfg.Transport.
func newTransport(ctx context.Context, cfg *config.Config) (llm.Transport, error) {
	switch cfg.Transport {
	case config.TransportSDK:
		// the SDK wants the API root; the endpoint names the completions route
		baseURL := strings.TrimSuffix(cfg.Endpoint, "chat/completions")
		return llm.NewSDKTransport(option.WithBaseURL(baseURL)), nil
	case config.TransportBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		return llm.NewBedrockTransport(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID), nil
	default:
		return llm.NewHTTPTransport(llm.WithEndpoint(cfg.Endpoint)), nil
	}
}
