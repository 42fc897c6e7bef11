package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	domain "github.com/feiramap/feiramap/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printRankedTable(results []domain.ScoredOffer) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("RANK\tOFFER\tVENDOR\tPRICE\tDIST KM\tSCORE\tTOP PICK\n")
	for i := range results {
		r := &results[i]

		rank := "-"
		if r.Rank != nil {
			rank = fmt.Sprintf("%d", *r.Rank)
		}
		price := "-"
		if p, ok := r.EffectivePrice(); ok {
			price = fmt.Sprintf("R$%.2f", p)
		}
		dist := "-"
		if r.DistanceKm != nil {
			dist = fmt.Sprintf("%.2f", *r.DistanceKm)
		}

		tw.writef("%s\t%s\t%s\t%s\t%s\t%.3f\t%v\n",
			rank,
			truncate(r.Title, 40),
			truncate(r.Vendor.Name, 24),
			price,
			dist,
			r.Score,
			r.TopPick,
		)
	}
	return tw.finish()
}

func printLayersTable(layers []domain.ClusterLayer) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("BUCKET\tMARKERS\tCLUSTERS\tCLUSTERED POINTS\n")
	for i := range layers {
		l := &layers[i]

		points := 0
		for _, c := range l.Clusters {
			points += c.Count
		}
		tw.writef("%s\t%d\t%d\t%d\n",
			l.Bucket,
			len(l.Markers),
			len(l.Clusters),
			points,
		)
	}
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
