package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docai/internal/adapter/llm"
	"docai/internal/domain"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and generation providers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Languages:")
		for _, lang := range domain.SupportedLanguages {
			fmt.Printf("  %-12s %s\n", lang, strings.Join(lang.Extensions(), " "))
		}

		fmt.Println("\nProviders:")
		for _, p := range llm.Providers() {
			model := llm.DefaultModel(p)
			if model == "" {
				model = "-"
			}
			fmt.Printf("  %-12s %s\n", p, model)
		}
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
