// Package output provides utilities for formatting and displaying pipeline
// results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/retailcast/demand-forecast/internal/pipeline"
	"github.com/retailcast/demand-forecast/pkg/datetime"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rendering of a pipeline result: the
// ensemble summary, the weekly curve, and the per-cluster allocation.
func PrettyFormat(w io.Writer, result *pipeline.Result) error {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "--- Ensemble forecast ---\n")
	p.Fprintf(w, "Total demand: %d units\n", result.Ensemble.TotalDemand)
	for _, component := range result.Components {
		p.Fprintf(w, "  %s: %d units\n", component.Source, component.TotalDemand)
	}
	p.Fprintf(w, "Variance: %.1f%%", result.Ensemble.VariancePct*100)
	if result.Ensemble.HighVariance {
		p.Fprintf(w, " (HIGH - review recommended)")
	}
	p.Fprintf(w, "\n\n")

	curve := tablewriter.NewWriter(w)
	curve.Header([]string{"Week", "Start", "End", "Units", "Lower", "Upper"})
	curve.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var curveRows [][]string
	for _, week := range result.Ensemble.WeeklyCurve {
		curveRows = append(curveRows, []string{
			strconv.Itoa(week.WeekNumber),
			week.WeekStart.Format(datetime.DateLayout),
			week.WeekEnd.Format(datetime.DateLayout),
			p.Sprintf("%d", week.ForecastedUnits),
			p.Sprintf("%d", week.ConfidenceLower),
			p.Sprintf("%d", week.ConfidenceUpper),
		})
	}
	if err := curve.Bulk(curveRows); err != nil {
		return err
	}
	if err := curve.Render(); err != nil {
		return err
	}

	p.Fprintf(w, "\n--- Cluster allocation ---\n")
	shares := tablewriter.NewWriter(w)
	shares.Header([]string{"Cluster", "Share", "Units", "Stores"})
	shares.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var shareRows [][]string
	for _, share := range result.Shares {
		shareRows = append(shareRows, []string{
			share.ClusterID,
			fmt.Sprintf("%.1f%%", share.AllocationPercentage*100),
			p.Sprintf("%d", share.UnitCount),
			strconv.Itoa(share.MemberCount),
		})
	}
	if err := shares.Bulk(shareRows); err != nil {
		return err
	}
	return shares.Render()
}

// CsvFormat outputs the weekly curve and cluster shares in comma-separated
// value format.
func CsvFormat(w io.Writer, result *pipeline.Result) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"week", "week_start", "week_end", "forecasted_units", "confidence_lower", "confidence_upper"}); err != nil {
		return err
	}
	for _, week := range result.Ensemble.WeeklyCurve {
		record := []string{
			strconv.Itoa(week.WeekNumber),
			week.WeekStart.Format(datetime.DateLayout),
			week.WeekEnd.Format(datetime.DateLayout),
			strconv.Itoa(week.ForecastedUnits),
			strconv.Itoa(week.ConfidenceLower),
			strconv.Itoa(week.ConfidenceUpper),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	if err := writer.Write([]string{"cluster", "allocation_percentage", "unit_count", "member_count"}); err != nil {
		return err
	}
	for _, share := range result.Shares {
		record := []string{
			share.ClusterID,
			strconv.FormatFloat(share.AllocationPercentage, 'f', 6, 64),
			strconv.Itoa(share.UnitCount),
			strconv.Itoa(share.MemberCount),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormat outputs the full pipeline result as indented JSON.
func JSONFormat(w io.Writer, result *pipeline.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
