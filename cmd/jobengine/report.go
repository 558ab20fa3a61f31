package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/tupyy/jobengine/internal/store"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export persisted job history to an .xlsx workbook",
	RunE:  runReport,
}

func init() {
	flags := reportCmd.Flags()
	addConfigFlags(flags)
	flags.StringVar(&reportOutput, "output", "jobengine-report.xlsx", "path to write the workbook")
	rootCmd.AddCommand(reportCmd)
}

var reportColumns = []string{
	"ID", "Kind", "Label", "Status", "Attempts", "Error", "CreatedAt", "StartedAt", "StoppedAt",
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := loadConfiguration()
	if cfg.Persistence.CachePath == "" {
		return fmt.Errorf("report requires --cache-path (no snapshot store configured)")
	}

	db, err := store.NewDB(cfg.Persistence.CachePath)
	if err != nil {
		return err
	}
	defer db.Close()

	st := store.NewStore(db)
	ctx := context.Background()
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	snapshots, err := st.Snapshots().List(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Jobs"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, col := range reportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
	}

	for row, snap := range snapshots {
		values := []any{
			snap.ID, snap.Kind, snap.Label, snap.Status, snap.Attempts,
			snap.Error, formatTime(snap.CreatedAt), formatTime(snap.StartedAt), formatTime(snap.StoppedAt),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.SaveAs(reportOutput); err != nil {
		return fmt.Errorf("write report workbook: %w", err)
	}
	fmt.Printf("wrote %d job records to %s\n", len(snapshots), reportOutput)
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
