package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docai/internal/adapter/llm"
	"docai/internal/adapter/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the generated doc cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache location and entry count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := GetConfig().CacheDBPath(GetRootDir())
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			fmt.Printf("No cache at %s\n", dbPath)
			return nil
		}

		bc, err := store.OpenBoltCache(dbPath, llm.PromptHash())
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer bc.Close()

		n, err := bc.Len()
		if err != nil {
			return err
		}
		fmt.Printf("Cache:   %s\nEntries: %d\n", bc.Path(), n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached doc comment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := GetConfig().CacheDBPath(GetRootDir())
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			fmt.Println("Cache is already empty.")
			return nil
		}

		bc, err := store.OpenBoltCache(dbPath, llm.PromptHash())
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer bc.Close()

		if err := bc.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Printf("Cleared %s\n", dbPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInfoCmd, cacheClearCmd)
}
