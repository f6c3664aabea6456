package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldstack/progsync/internal/infrastructure/config"
	"github.com/fieldstack/progsync/internal/presentation/cli/output"
)

// InitResult holds the result of the init command for JSON output.
type InitResult struct {
	ConfigDir   string `json:"config_dir"`
	ConfigFile  string `json:"config_file"`
	Initialized bool   `json:"initialized"`
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize progsync configuration",
		Long: `Initialize progsync configuration interactively.

This command creates the ~/.progsync/ directory and generates a
config.yaml with the remote workspace settings.

The initialization process will:
  • Create ~/.progsync/ directory
  • Generate ~/.progsync/config.yaml
  • Prompt for the remote API token and workspace id`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing configuration")

	return cmd
}

// prompter handles interactive user input.
type prompter struct {
	reader    *bufio.Reader
	formatter *output.Formatter
}

func newPrompter(formatter *output.Formatter) *prompter {
	return &prompter{
		reader:    bufio.NewReader(os.Stdin),
		formatter: formatter,
	}
}

// prompt asks a question and returns the answer (or default if empty).
func (p *prompter) prompt(question, defaultValue string) (string, error) {
	if defaultValue != "" {
		p.formatter.Print("%s [%s]: ", question, defaultValue)
	} else {
		p.formatter.Print("%s: ", question)
	}

	answer, err := p.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

func runInit(force bool) error {
	format := output.FormatText
	if globalFlags.Output == "json" {
		format = output.FormatJSON
	}
	formatter := output.NewFormatter(
		output.WithFormat(format),
		output.WithColor(format != output.FormatJSON && output.IsColorSupported()),
	)

	loader, err := config.NewLoader("")
	if err != nil {
		return err
	}

	configPath := loader.DefaultConfigPath()
	if globalFlags.ConfigFile != "" {
		configPath = globalFlags.ConfigFile
	}

	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	cfg := config.NewDefaultConfig()

	if format != output.FormatJSON {
		formatter.Header("Progsync Setup")
		p := newPrompter(formatter)

		token, err := p.prompt("Remote API token (leave empty to configure later)", "")
		if err != nil {
			return err
		}
		cfg.Remote.APIToken = token

		workspace, err := p.prompt("Remote workspace id", "")
		if err != nil {
			return err
		}
		cfg.Remote.WorkspaceID = workspace

		interval, err := p.prompt("Minimum interval between remote calls", cfg.Remote.MinCallInterval.String())
		if err != nil {
			return err
		}
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Remote.MinCallInterval = d
		}
	}

	if err := loader.Save(cfg, configPath); err != nil {
		return err
	}

	result := InitResult{
		ConfigDir:   loader.ConfigDir(),
		ConfigFile:  configPath,
		Initialized: true,
	}

	if format == output.FormatJSON {
		return formatter.JSON(result)
	}

	formatter.Success("Configuration written to %s", configPath)
	if cfg.Remote.APIToken == "" {
		formatter.Info("No API token set; drain and pull stay disabled until remote.api_token is configured")
	}
	return nil
}
