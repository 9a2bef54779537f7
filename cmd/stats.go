package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pi22by7/sap-analytics-platform/internal/report"
	"github.com/pi22by7/sap-analytics-platform/internal/writer"
)

var statsDir string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics for a written dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		vendors, err := writer.ReadTable(statsDir, "LFA1")
		if err != nil {
			return err
		}
		headers, err := writer.ReadTable(statsDir, "EKKO")
		if err != nil {
			return err
		}
		lines, err := writer.ReadTable(statsDir, "EKPO")
		if err != nil {
			return err
		}
		history, err := writer.ReadTable(statsDir, "EKBE")
		if err != nil {
			return err
		}

		s, err := report.Summarize(vendors, headers, lines, history)
		if err != nil {
			return err
		}

		color.Cyan("--- GENERATION SUMMARY ---")
		fmt.Printf("Total Spend: $%.2f\n", s.TotalSpend)

		fmt.Println("\nSpend by PO Type:")
		for docType, spend := range s.SpendByType {
			fmt.Printf("  %s: $%.2f\n", docType, spend)
		}

		fmt.Printf("\nDelivery Performance: %.1f%% late (%d receipts)\n", s.LateRate*100, s.ReceiptCount)

		fmt.Println("\nTop 5 Vendors by Spend:")
		for _, v := range s.TopVendors {
			fmt.Printf("  - %s (%s): $%.2f\n", v.Name, v.VendorID, v.Spend)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsDir, "dir", "data", "Dataset directory")
}
