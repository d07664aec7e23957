package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// RenderConfig captures the inputs shared by the list/export/send commands
// after merging defaults, config file values, and CLI overrides.
type RenderConfig struct {
	Input      string
	Host       string
	HTTPS      bool
	Token      string
	Headers    []string // raw "Name: value" lines
	ConfigPath string
	Verbose    bool
}

func defaultRenderConfig() RenderConfig {
	return RenderConfig{HTTPS: true}
}

func addRenderFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the OpenAPI/Swagger document")
	flags.String("host", "", "Target host field, written verbatim into the Host header (e.g. api.example.com:8443)")
	flags.Bool("https", true, "Derive the transport port from HTTPS (443) instead of HTTP (80)")
	flags.String("token", "", "Bearer token injected as the Authorization header")
	flags.StringArray("header", nil, "Extra header line 'Name: value' (repeatable; overrides sampled headers)")
}

func resolveRenderConfig(cmd *cobra.Command) (*RenderConfig, error) {
	cfg := defaultRenderConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyRenderConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyRenderFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.Input = strings.TrimSpace(cfg.Input)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Token = strings.TrimSpace(cfg.Token)

	if cfg.Input == "" {
		return nil, newUsageError(fmt.Sprintf("%s: --input is required (set via flag or config file)", cmd.Name()))
	}
	return &cfg, nil
}

func applyRenderFlagOverrides(flags *pflag.FlagSet, cfg *RenderConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = value
	}
	if flags.Changed("host") {
		value, err := flags.GetString("host")
		if err != nil {
			return err
		}
		cfg.Host = value
	}
	if flags.Changed("https") {
		value, err := flags.GetBool("https")
		if err != nil {
			return err
		}
		cfg.HTTPS = value
	}
	if flags.Changed("token") {
		value, err := flags.GetString("token")
		if err != nil {
			return err
		}
		cfg.Token = value
	}
	if flags.Changed("header") {
		value, err := flags.GetStringArray("header")
		if err != nil {
			return err
		}
		cfg.Headers = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}
	return nil
}

func applyRenderConfigFromFile(cfg *RenderConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		switch normalizeKey(key) {
		case "input":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Input = str
		case "host":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Host = str
		case "https":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.HTTPS = val
		case "token":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Token = str
		case "headers":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Headers = list
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		// A multi-line scalar: one header per line.
		var lines []string
		for _, line := range strings.Split(val, "\n") {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
		return lines, nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
