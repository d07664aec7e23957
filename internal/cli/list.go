package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cd0gu/openapi-to-repeater/internal/document"
	"github.com/cd0gu/openapi-to-repeater/internal/extract"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the requests generated from an OpenAPI document",
		Example: strings.TrimSpace(`  openapi2repeater list --input openapi.json
  openapi2repeater --config repeater.yaml list`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveRenderConfig(cmd)
			if err != nil {
				return err
			}
			return runList(cmd.Context(), cmd, cfg)
		},
	}
	addRenderFlags(cmd)
	return cmd
}

func runList(ctx context.Context, cmd *cobra.Command, cfg *RenderConfig) error {
	reqs, err := loadAndExtract(ctx, cfg)
	if err != nil {
		return err
	}
	for i, r := range reqs {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i+1, r.Label)
	}
	return nil
}

// loadAndExtract loads the document and waits for the one-shot background
// extraction to complete.
func loadAndExtract(ctx context.Context, cfg *RenderConfig) ([]extract.GeneratedRequest, error) {
	log := newLogger(cfg.Verbose)
	doc, err := document.Load(ctx, cfg.Input, document.WithLogger(log))
	if err != nil {
		return nil, mapLoadError(err)
	}
	outcome := <-extract.Start(ctx, doc, extract.WithLogger(log))
	if outcome.Err != nil {
		return nil, fmt.Errorf("extract: %w", outcome.Err)
	}
	return outcome.Requests, nil
}

func mapLoadError(err error) error {
	var le *document.LoadError
	if errors.As(err, &le) {
		msg := le.Message
		if le.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, le.Location)
		}
		return newUsageError(msg)
	}
	return err
}

// selectRequests resolves --request: empty selects everything, otherwise an
// exact label match or a 1-based index.
func selectRequests(reqs []extract.GeneratedRequest, pick string) ([]extract.GeneratedRequest, error) {
	pick = strings.TrimSpace(pick)
	if pick == "" {
		return reqs, nil
	}
	for _, r := range reqs {
		if r.Label == pick {
			return []extract.GeneratedRequest{r}, nil
		}
	}
	if n, err := strconv.Atoi(pick); err == nil {
		if n < 1 || n > len(reqs) {
			return nil, newUsageError(fmt.Sprintf("--request index %d out of range (1..%d)", n, len(reqs)))
		}
		return []extract.GeneratedRequest{reqs[n-1]}, nil
	}
	return nil, newUsageError(fmt.Sprintf("--request %q matches no generated request (try the list command)", pick))
}
