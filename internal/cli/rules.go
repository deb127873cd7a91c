package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dperrors "github.com/depexplain/depexplain/pkg/errors"
	"github.com/depexplain/depexplain/pkg/rules"
)

// newRulesCmd creates the rules inspection command.
func newRulesCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the conflict rule table",
	}

	cmd.AddCommand(newRulesListCmd(configFile))
	cmd.AddCommand(newRulesShowCmd(configFile))

	return cmd
}

func newRulesListCmd(configFile *string) *cobra.Command {
	var (
		asJSON    bool
		rulePaths []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all conflict rules",
		RunE: func(c *cobra.Command, args []string) error {
			table, err := loadTable(*configFile, rulePaths)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(table.Rules())
			}

			printInfo("%d conflict rules", table.Len())
			printNewline()
			for _, r := range table.Rules() {
				severity := severityStyle(r.Severity).Render(r.Severity.String())
				fmt.Printf("%s  %s\n", severity, StyleValue.Render(r.ID))
				printDetail("%s %s vs %s %s", r.Left.Name, predicateRange(r.Left), r.Right.Name, predicateRange(r.Right))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().StringArrayVar(&rulePaths, "rules", nil, "extra rule table files (repeatable)")

	return cmd
}

func newRulesShowCmd(configFile *string) *cobra.Command {
	var rulePaths []string

	cmd := &cobra.Command{
		Use:   "show <rule-id>",
		Short: "Show one conflict rule in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			table, err := loadTable(*configFile, rulePaths)
			if err != nil {
				return err
			}

			for _, r := range table.Rules() {
				if r.ID != args[0] {
					continue
				}
				fmt.Println(StyleTitle.Render(r.ID))
				printKeyValue("severity", r.Severity.String())
				printKeyValue("left", r.Left.Name+" "+predicateRange(r.Left))
				printKeyValue("right", r.Right.Name+" "+predicateRange(r.Right))
				printKeyValue("reason", r.Reason)
				return nil
			}
			return dperrors.New(dperrors.ErrCodeNotFound, "no rule with id %q", args[0])
		},
	}

	cmd.Flags().StringArrayVar(&rulePaths, "rules", nil, "extra rule table files (repeatable)")

	return cmd
}

func loadTable(configFile string, extra []string) (*rules.Table, error) {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return nil, err
	}
	return loadRules(cfg.Rules, extra)
}

func predicateRange(p rules.Predicate) string {
	if p.Range == "" {
		return "(any)"
	}
	return p.Range
}
