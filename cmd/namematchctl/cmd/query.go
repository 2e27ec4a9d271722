package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wallarm/namematch"
)

var (
	queryName       string
	queryMinScore   uint8
	queryOnlyDirect bool
	queryPageNum    int
	queryPageSize   int

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Find entities whose name best matches a query string",
		RunE:  runQuery,
	}
)

func init() {
	queryCmd.Flags().StringVarP(&queryName, "name", "n", "", "query name text (required)")
	queryCmd.Flags().Uint8Var(&queryMinScore, "min-score", 0, "minimum score 0..100")
	queryCmd.Flags().BoolVar(&queryOnlyDirect, "only-direct", false, "drop rows whose matched name isn't a direct hit")
	queryCmd.Flags().IntVar(&queryPageNum, "page", 1, "page number, 1-indexed")
	queryCmd.Flags().IntVar(&queryPageSize, "page-size", 20, "results per page")
	_ = queryCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	fc, err := loadFileConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}

	eng, err := namematch.NewEngine(fc.engineConfig(false), defaultCleaner, defaultDistancer)
	if err != nil {
		return err
	}
	defer eng.Close()

	results, err := eng.BestMatches(context.Background(), namematch.QueryParams{
		Name:       queryName,
		MinScore:   queryMinScore,
		OnlyDirect: queryOnlyDirect,
		PageNum:    queryPageNum,
		PageSize:   queryPageSize,
	})
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%-3d %-36s %-36s %s\n", r.Score, r.EntityID, r.NameIDGUID, r.FullName)
	}
	return nil
}
