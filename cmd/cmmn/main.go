package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cmmnparser "cmmn-parser"
	"cmmn-parser/model"
)

var rootCmd = &cobra.Command{
	Use:   "cmmn",
	Short: "CMMN case definition tooling",
	Long: `cmmn parses CMMN case definitions from XML or JSON, validates JSON
documents against the structural schema, and converts between formats.`,
	SilenceUsage: true,
}

func main() {
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func registerCommands() {
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(schemaCmd())
}

func parseCmd() *cobra.Command {
	var dump bool
	var maxDepth int
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a CMMN file and summarize its contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := cmmnparser.ParseFile(args[0], cmmnparser.WithMaxDepth(maxDepth))
			if err != nil {
				return err
			}
			if dump {
				spew.Dump(defs)
				return nil
			}
			printSummary(defs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the full model instead of a summary")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (0 uses the default)")
	return cmd
}

func validateCmd() *cobra.Command {
	var maxDepth int
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a CMMN JSON file against the structural schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			findings := cmmnparser.ValidationErrors(content, cmmnparser.WithMaxDepth(maxDepth))
			if len(findings) == 0 {
				fmt.Println("document OK")
				return nil
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"#", "Finding"})
			for i, f := range findings {
				tw.AppendRow(table.Row{i + 1, f})
			}
			tw.Render()
			return fmt.Errorf("%d schema violation(s)", len(findings))
		},
	}
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (0 uses the default)")
	return cmd
}

func convertCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a CMMN file to JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := cmmnparser.ParseFile(args[0])
			if err != nil {
				return err
			}
			doc := defs.ToDict()
			switch to {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			case "yaml":
				enc := yaml.NewEncoder(os.Stdout)
				defer enc.Close()
				return enc.Encode(doc)
			default:
				return fmt.Errorf("unsupported output format %q (want json or yaml)", to)
			}
		},
	}
	cmd.Flags().StringVar(&to, "to", "json", "output format (json or yaml)")
	return cmd
}

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show the structural schema descriptor",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := cmmnparser.Schema()
			fmt.Printf("%s (version %s)\n%s\n\n", info.Title, info.Version, info.Description)
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Supported element"})
			for _, el := range info.SupportedElements {
				tw.AppendRow(table.Row{el})
			}
			tw.Render()
			return nil
		},
	}
	return cmd
}

func printSummary(defs *model.Definitions) {
	fmt.Printf("Definitions: %s", defs.ID)
	if defs.Name != "" {
		fmt.Printf(" (%s)", defs.Name)
	}
	fmt.Println()

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Case", "Plan items", "Sentries", "Case file items"})
	for _, c := range defs.Cases {
		planItems, sentries := 0, 0
		if c.CasePlanModel != nil {
			planItems, sentries = countStage(&c.CasePlanModel.Stage)
		}
		fileItems := 0
		if c.CaseFileModel != nil {
			fileItems = countFileItems(c.CaseFileModel.CaseFileItems)
		}
		tw.AppendRow(table.Row{c.ID, planItems, sentries, fileItems})
	}
	tw.Render()

	if len(defs.Processes) > 0 || len(defs.Decisions) > 0 {
		fmt.Printf("Processes: %d, Decisions: %d\n", len(defs.Processes), len(defs.Decisions))
	}
}

func countStage(s *model.Stage) (planItems, sentries int) {
	planItems = len(s.PlanItems)
	sentries = len(s.Sentries)
	for _, def := range s.Definitions {
		if nested, ok := def.(*model.Stage); ok {
			pi, sn := countStage(nested)
			planItems += pi
			sentries += sn
		}
	}
	return planItems, sentries
}

func countFileItems(items []*model.CaseFileItem) int {
	total := 0
	for _, it := range items {
		total += 1 + countFileItems(it.Children)
	}
	return total
}
