package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/brunobiangulo/coauthornet/graph"
	"github.com/brunobiangulo/coauthornet/profile"
)

// Sheet names of the workbook.
const (
	SheetProfiles   = "Profiles"
	SheetCentrality = "Centrality"
	SheetShared     = "Shared"
)

// chartRows caps the number of nodes plotted in the centrality chart.
const chartRows = 20

// Summary is everything the workbook reports on.
type Summary struct {
	Profiles   []profile.Record
	Graph      *graph.Graph
	Centrality *graph.Report
	Pairs      []graph.SharedPair
}

// WriteWorkbook saves an .xlsx file with one sheet of profiles, one of
// centrality scores with a column chart of the top nodes, and one of
// shared connections.
func WriteWorkbook(path string, s Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("report: header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetProfiles); err != nil {
		return fmt.Errorf("report: rename sheet: %w", err)
	}
	if err := writeProfiles(f, s.Profiles, bold); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetCentrality); err != nil {
		return fmt.Errorf("report: new sheet: %w", err)
	}
	var rows []Row
	if s.Graph != nil && s.Centrality != nil {
		rows = CentralityRows(s.Graph, s.Centrality)
	}
	if err := writeCentrality(f, rows, bold); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetShared); err != nil {
		return fmt.Errorf("report: new sheet: %w", err)
	}
	if err := writeShared(f, s.Pairs, bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("report: %s header: %w", sheet, err)
	}
	return f.SetRowStyle(sheet, 1, 1, style)
}

func writeProfiles(f *excelize.File, records []profile.Record, style int) error {
	if err := writeHeader(f, SheetProfiles, profile.CSVHeader, style); err != nil {
		return err
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.ScholarID, r.Name, r.Affiliation, strings.Join(r.Interests, "; "),
			r.CitedBy, r.HIndex, r.I10Index, r.Cohort, strings.Join(r.Coauthors, "; "),
		}
		if err := f.SetSheetRow(SheetProfiles, cell, &row); err != nil {
			return fmt.Errorf("report: profile row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(SheetProfiles, "B", "C", 30); err != nil {
		return err
	}
	return f.SetColWidth(SheetProfiles, "I", "I", 80)
}

func writeCentrality(f *excelize.File, rows []Row, style int) error {
	if err := writeHeader(f, SheetCentrality, CentralityHeader, style); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Node, string(r.Kind), r.Degree, r.Closeness, r.Betweenness, r.Eigenvector}
		if err := f.SetSheetRow(SheetCentrality, cell, &row); err != nil {
			return fmt.Errorf("report: centrality row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(SheetCentrality, "A", "A", 32); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	last := min(len(rows), chartRows) + 1
	var series []excelize.ChartSeries
	for col := range CentralityHeader[2:] {
		letter, err := excelize.ColumnNumberToName(col + 3)
		if err != nil {
			return err
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", SheetCentrality, letter),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", SheetCentrality, last),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", SheetCentrality, letter, letter, last),
		})
	}
	err := f.AddChart(SheetCentrality, "H2", &excelize.Chart{
		Type:   excelize.Col,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Centrality Measures"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	})
	if err != nil {
		return fmt.Errorf("report: centrality chart: %w", err)
	}
	return nil
}

func writeShared(f *excelize.File, pairs []graph.SharedPair, style int) error {
	if err := writeHeader(f, SheetShared, SharedHeader, style); err != nil {
		return err
	}
	for i, p := range pairs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{p.A, p.B, p.Weight, strings.Join(p.Shared, "; ")}
		if err := f.SetSheetRow(SheetShared, cell, &row); err != nil {
			return fmt.Errorf("report: shared row %d: %w", i+2, err)
		}
	}
	return f.SetColWidth(SheetShared, "A", "B", 30)
}
