package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"docai/internal/adapter/treesitter"
	"docai/internal/usecase"
)

var (
	inspectLanguage string
	inspectJSON     bool
	inspectMissing  bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "List the methods of a file and whether they are documented",
	Long: `Parse a file and print every method unit with its line range and doc status.
Nothing is generated and the file is never modified.

Examples:
  docai inspect main.py
  docai inspect -l c lib.inc --json
  docai inspect server.go --missing`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspectLanguage, "language", "l", "", "language tag (default from file extension)")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output as JSON")
	inspectCmd.Flags().BoolVar(&inspectMissing, "missing", false, "only list methods without a doc comment")
}

type inspectEntry struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Documented bool   `json:"documented"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	parser := treesitter.NewParser()
	defer parser.Close()

	lang, units, err := usecase.NewInspectUseCase(parser).Inspect(cmd.Context(), args[0], inspectLanguage)
	if err != nil {
		return err
	}

	entries := make([]inspectEntry, 0, len(units))
	for _, u := range units {
		if inspectMissing && u.HasDocComment {
			continue
		}
		entries = append(entries, inspectEntry{
			Name:       u.Name,
			Kind:       u.Kind,
			StartLine:  u.StartLine,
			EndLine:    u.EndLine,
			Documented: u.HasDocComment,
		})
	}

	if inspectJSON {
		output, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("%s (%s): %d methods\n\n", args[0], lang, len(entries))
	for _, e := range entries {
		status := "missing"
		if e.Documented {
			status = "documented"
		}
		fmt.Printf("  %-10s %-12s L%d-%d  %s\n", status, e.Kind, e.StartLine, e.EndLine, e.Name)
	}
	return nil
}
