package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cd0gu/openapi-to-repeater/internal/render"
	"github.com/cd0gu/openapi-to-repeater/internal/repeater"
)

// SendConfig captures the send command inputs.
type SendConfig struct {
	RenderConfig
	Request  string
	Tool     string
	ToolArgs []string
}

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Hand one rendered request to an external replay tool",
		Long: "Render a single request and hand its bytes to an external replay tool command " +
			"(raw request on stdin; host, port, https flag, and label as trailing arguments). " +
			"When the tool rejects both send forms, or no tool is configured, the request " +
			"falls back to being displayed so it is never lost.",
		Example: strings.TrimSpace(`  openapi2repeater send --input openapi.json --host api.example.com --request 1 --tool replay-import
  openapi2repeater send --input openapi.json --host api.example.com --request 'GET /pets/{id}'`),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveRenderConfig(cmd)
			if err != nil {
				return err
			}
			cfg := SendConfig{RenderConfig: *base}
			flags := cmd.Flags()
			if cfg.Request, err = flags.GetString("request"); err != nil {
				return err
			}
			if cfg.Tool, err = flags.GetString("tool"); err != nil {
				return err
			}
			if cfg.ToolArgs, err = flags.GetStringArray("tool-arg"); err != nil {
				return err
			}
			return runSend(cmd.Context(), cmd, &cfg)
		},
	}
	addRenderFlags(cmd)
	flags := cmd.Flags()
	flags.String("request", "", "Label or 1-based index of the request to send (required)")
	flags.String("tool", "", "External replay tool command; omit to fall back to display")
	flags.StringArray("tool-arg", nil, "Fixed leading argument for the replay tool (repeatable)")
	return cmd
}

func runSend(ctx context.Context, cmd *cobra.Command, cfg *SendConfig) error {
	if strings.TrimSpace(cfg.Request) == "" {
		return newUsageError("send: --request is required (label or 1-based index)")
	}

	reqs, err := loadAndExtract(ctx, &cfg.RenderConfig)
	if err != nil {
		return err
	}
	selected, err := selectRequests(reqs, cfg.Request)
	if err != nil {
		return err
	}
	picked := selected[0]

	extras := render.ParseExtraHeaders(strings.Join(cfg.Headers, "\n"))
	final, err := render.Final(picked.RawBase, cfg.Host, cfg.Token, extras)
	if errors.Is(err, render.ErrEmptyHost) {
		return newUsageError("target host is empty (set --host or the config file's host field)")
	}
	if err != nil {
		return err
	}

	host, port := render.ParseHostPort(cfg.Host, cfg.HTTPS)

	var dispatcher repeater.Dispatcher
	if strings.TrimSpace(cfg.Tool) != "" {
		dispatcher = repeater.ExecDispatcher{
			Command: cfg.Tool,
			Args:    cfg.ToolArgs,
			Stderr:  cmd.ErrOrStderr(),
		}
	}

	route, err := repeater.Deliver(repeater.Request{
		Host:     host,
		Port:     port,
		UseHTTPS: cfg.HTTPS,
		Raw:      []byte(final),
		Label:    picked.Label,
	}, dispatcher, nil, repeater.WriterDisplay{W: cmd.OutOrStdout()})
	if err != nil {
		return fmt.Errorf("send %q: %w", picked.Label, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Delivered %q via %s.\n", picked.Label, route)
	return nil
}
