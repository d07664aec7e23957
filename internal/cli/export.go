package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cd0gu/openapi-to-repeater/internal/export"
	"github.com/cd0gu/openapi-to-repeater/internal/render"
)

// ExportConfig captures the export command inputs.
type ExportConfig struct {
	RenderConfig
	Request string
	Out     string
	Force   bool
	DryRun  bool
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render final raw requests with host, token, and extra headers merged in",
		Long: "Render final raw HTTP requests for one or all operations: the target host, " +
			"bearer token, and extra headers are merged into the generated request and the " +
			"result is CRLF-normalized wire text.",
		Example: strings.TrimSpace(`  openapi2repeater export --input openapi.json --host api.example.com --request 'GET /pets/{id}'
  openapi2repeater export --input openapi.json --host api.example.com --out ./requests`),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveRenderConfig(cmd)
			if err != nil {
				return err
			}
			cfg := ExportConfig{RenderConfig: *base}
			flags := cmd.Flags()
			if cfg.Request, err = flags.GetString("request"); err != nil {
				return err
			}
			if cfg.Out, err = flags.GetString("out"); err != nil {
				return err
			}
			if cfg.Force, err = flags.GetBool("force"); err != nil {
				return err
			}
			if cfg.DryRun, err = flags.GetBool("dry-run"); err != nil {
				return err
			}
			return runExport(cmd.Context(), cmd, &cfg)
		},
	}
	addRenderFlags(cmd)
	flags := cmd.Flags()
	flags.String("request", "", "Label or 1-based index of a single request (empty renders all)")
	flags.String("out", "", "Directory to write one .http file per request (empty writes to stdout)")
	flags.Bool("force", false, "Write into a non-empty output directory")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	return cmd
}

func runExport(ctx context.Context, cmd *cobra.Command, cfg *ExportConfig) error {
	reqs, err := loadAndExtract(ctx, &cfg.RenderConfig)
	if err != nil {
		return err
	}
	selected, err := selectRequests(reqs, cfg.Request)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return newUsageError("export: the document declares no operations")
	}

	extras := render.ParseExtraHeaders(strings.Join(cfg.Headers, "\n"))

	out := strings.TrimSpace(cfg.Out)
	if out == "" {
		if len(selected) != 1 {
			return newUsageError("export: writing to stdout needs --request to select a single operation (or set --out)")
		}
		final, err := renderFinal(selected[0].RawBase, cfg, extras)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), final)
		return nil
	}

	files := make(map[string][]byte, len(selected))
	for _, r := range selected {
		final, err := renderFinal(r.RawBase, cfg, extras)
		if err != nil {
			return err
		}
		files[export.FileName(r.Label)] = []byte(final)
	}

	res, err := export.Write(files, export.Options{OutDir: out, Force: cfg.Force, DryRun: cfg.DryRun})
	if err != nil {
		return err
	}
	if cfg.DryRun {
		absOut := out
		if ap, err := filepath.Abs(out); err == nil {
			absOut = ap
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Planned writes to %s (%d files):\n", absOut, len(res.Planned))
		for _, p := range res.Planned {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", p.RelPath)
		}
	}
	return nil
}

func renderFinal(rawBase string, cfg *ExportConfig, extras *render.Headers) (string, error) {
	final, err := render.Final(rawBase, cfg.Host, cfg.Token, extras)
	if errors.Is(err, render.ErrEmptyHost) {
		return "", newUsageError("target host is empty (set --host or the config file's host field)")
	}
	return final, err
}
