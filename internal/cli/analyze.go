package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	dperrors "github.com/depexplain/depexplain/pkg/errors"
	"github.com/depexplain/depexplain/pkg/explain"
	"github.com/depexplain/depexplain/pkg/pipeline"
	"github.com/depexplain/depexplain/pkg/report"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	format      string   // output format: text, json, markdown, dot, svg
	output      string   // output file path (stdout if empty)
	provider    string   // override the configured LLM provider
	rulePaths   []string // extra rule tables merged over the builtin one
	noLLM       bool     // template explanations only
	noCache     bool     // disable the explanation cache
	noExplain   bool     // findings without explanations
	interactive bool     // browse findings in a TUI
}

// newAnalyzeCmd creates the analyze command.
func newAnalyzeCmd(configFile *string) *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze <requirements-file>",
		Short: "Check a requirements file for known dependency conflicts",
		Long: `Analyze a Python requirements.txt file for known dependency conflicts.

The file is parsed line by line, matched against the conflict rule table,
and every conflict is explained. Pass "-" to read from stdin.

Examples:
  depexplain analyze requirements.txt
  depexplain analyze requirements.txt --format json
  depexplain analyze requirements.txt -o report.md --format markdown
  pip freeze | depexplain analyze -`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runAnalyze(c, args[0], *configFile, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", report.FormatText, "output format (text, json, markdown, dot, svg)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "LLM provider (huggingface, gemini, none)")
	cmd.Flags().StringArrayVar(&opts.rulePaths, "rules", nil, "extra rule table files (repeatable)")
	cmd.Flags().BoolVar(&opts.noLLM, "no-llm", false, "skip the LLM and use template explanations")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the explanation cache")
	cmd.Flags().BoolVar(&opts.noExplain, "no-explain", false, "report findings without explanations")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse findings interactively")

	return cmd
}

func runAnalyze(cmd *cobra.Command, path, configFile string, opts analyzeOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if !report.ValidFormats[opts.format] {
		return dperrors.New(dperrors.ErrCodeInvalidFormat, "unknown format %q", opts.format)
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	if opts.provider != "" {
		cfg.LLM.Provider = opts.provider
	}
	if opts.noLLM {
		cfg.LLM.Provider = ProviderNone
	}
	if opts.noCache {
		cfg.Cache.Disabled = true
	}

	table, err := loadRules(cfg.Rules, opts.rulePaths)
	if err != nil {
		return err
	}

	backend := newCacheBackend(cfg.Cache, logger)
	defer backend.Close()

	provider, closeProvider, err := newProvider(ctx, cfg, backend, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	engine := explain.New(
		explain.WithProvider(provider),
		explain.WithTimeout(cfg.LLM.Timeout.Duration),
	)
	runner := pipeline.NewRunner(table, engine, logger)

	pipeOpts := pipeline.Options{NoExplain: opts.noExplain}
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return dperrors.Wrap(dperrors.ErrCodeInvalidInput, err, "reading stdin")
		}
		pipeOpts.Content = string(data)
	} else {
		pipeOpts.Path = path
	}

	tracker := newProgress(logger)
	var spin *Spinner
	if provider != nil && !opts.noExplain {
		spin = newSpinner(ctx, "Explaining conflicts via "+provider.Name())
		spin.Start()
	}
	result, err := runner.Execute(ctx, pipeOpts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	tracker.done(fmt.Sprintf("Analyzed %d requirements", result.Stats.Requirements))

	rep := report.New(result)

	if opts.interactive {
		return runFindingsTUI(rep)
	}

	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := report.Render(f, rep, opts.format); err != nil {
			return err
		}
		printSuccess("Report written")
		printFile(opts.output)
		return nil
	}

	if opts.format == report.FormatText {
		printReport(rep)
		return nil
	}
	return report.Render(os.Stdout, rep, opts.format)
}

// printReport renders a styled terminal report.
func printReport(rep *report.Report) {
	printNewline()
	fmt.Println(StyleTitle.Render("Dependency analysis") + " " + StyleDim.Render(rep.Input))
	printDetail("%d requirements, %d warnings", len(rep.Requirements), len(rep.Warnings))

	for _, warn := range rep.Warnings {
		printWarning("%s", warn)
	}

	if rep.Compatible {
		printNewline()
		printSuccess("No conflicts detected")
		return
	}

	printNewline()
	printError("%d %s found", len(rep.Findings), pluralize("conflict", len(rep.Findings)))

	for i, f := range rep.Findings {
		printNewline()
		severity := severityStyle(f.Severity).Render(strings.ToUpper(f.Severity.String()))
		fmt.Printf("%d. [%s] %s\n", i+1, severity, StyleValue.Render(f.Explanation.Summary))
		printDetail("between %s and %s", f.Left, f.Right)
		printDetail("why: %s", f.Explanation.Why)
		printDetail("fix: %s", f.Explanation.Fix)
		if f.Explanation.Source == explain.SourceTemplate {
			printDetail("(template explanation)")
		}
	}

	printNewline()
	printNextStep("Browse interactively", appName+" analyze "+rep.Input+" --interactive")
}

func pluralize(s string, n int) string {
	if n == 1 {
		return s
	}
	return s + "s"
}
