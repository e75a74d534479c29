package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"skud-compare-api/internal/models"
	"skud-compare-api/internal/report"
)

type compareOptions struct {
	file     string
	from     string
	to       string
	sheetURL string
	asJSON   bool
	export   string
}

func newCompareCmd() *cobra.Command {
	var opts compareOptions

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run one comparison of a SKUD export against the tabell",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, to, err := parseRange(opts.from, opts.to)
			if err != nil {
				return err
			}
			rt, err := newRuntime(opts.sheetURL)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			result, err := rt.pipeline.Run(cmd.Context(), opts.file, from, to)
			if err != nil {
				return err
			}

			switch {
			case opts.asJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			case opts.export != "":
				return exportResult(result, opts.export)
			default:
				renderResult(cmd, result)
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "", "path to the SKUD .xlsx export")
	cmd.Flags().StringVar(&opts.from, "from", "", "range start, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.to, "to", "", "range end, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.sheetURL, "sheet-url", "", "Google Sheets URL of the tabell (overrides GOOGLE_SHEET_URL)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "emit the raw JSON result")
	cmd.Flags().StringVar(&opts.export, "export", "", "write the result to a .xlsx or .pdf file instead of printing")
	cobra.CheckErr(cmd.MarkFlagRequired("file"))
	cobra.CheckErr(cmd.MarkFlagRequired("from"))
	cobra.CheckErr(cmd.MarkFlagRequired("to"))
	return cmd
}

func exportResult(result models.CompareResult, path string) error {
	var (
		buf interface{ Bytes() []byte }
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		buf, err = report.BuildWorkbook(result)
	case ".pdf":
		buf, err = report.BuildPDF(result)
	default:
		return fmt.Errorf("unsupported export extension %q, want .xlsx or .pdf", ext)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func renderResult(cmd *cobra.Command, result models.CompareResult) {
	out := cmd.OutOrStdout()
	heading := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgRed)

	heading.Fprintf(out, "Comparison %s .. %s\n", result.Summary.DateRange[0], result.Summary.DateRange[1])
	fmt.Fprintf(out, "tabell employees %d, skud employees %d, matched %d, broken punches %d\n\n",
		result.Summary.TotalEmployeesTabell, result.Summary.TotalEmployeesSkud,
		result.Summary.MatchedEmployees, result.Summary.BrokenCount)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Employee", "Name", "Date", "Tabell", "SKUD", "Diff", "Type"})
	table.SetBorder(false)
	for _, row := range result.Comparison {
		dates := make([]string, 0, len(row.Days))
		for iso := range row.Days {
			dates = append(dates, iso)
		}
		sort.Strings(dates)
		for _, iso := range dates {
			cell := row.Days[iso]
			if cell.Tabell == 0 && cell.Skud == 0 && !cell.Broken {
				continue
			}
			diff := fmt.Sprintf("%.1f", cell.Diff)
			if cell.Diff != 0 {
				diff = warn.Sprint(diff)
			}
			table.Append([]string{
				row.EmployeeID, row.Name, iso,
				fmt.Sprintf("%.1f", cell.Tabell),
				fmt.Sprintf("%.1f", cell.Skud),
				diff,
				string(cell.ShiftType),
			})
		}
	}
	table.Render()

	if len(result.BrokenShifts) > 0 {
		fmt.Fprintln(out)
		warn.Fprintln(out, "Broken shifts")
		broken := tablewriter.NewWriter(out)
		broken.SetHeader([]string{"Employee", "Name", "Date", "Punch", "Estimated"})
		broken.SetBorder(false)
		for _, b := range result.BrokenShifts {
			broken.Append([]string{b.EmployeeID, b.Name, b.AttributedDate, b.PunchTime, b.EstimatedType})
		}
		broken.Render()
	}
}
