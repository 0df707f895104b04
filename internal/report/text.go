// Package report renders rankings for a human operator.
package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/station-scout/internal/domain"
)

// TextReporter writes a ranking as plain text. It implements
// pipeline.Reporter.
type TextReporter struct {
	w io.Writer
}

// NewTextReporter creates a reporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

// Report prints one block per candidate in rank order. Legs follow the
// destination configuration order.
func (r *TextReporter) Report(_ context.Context, ranking domain.Ranking) error {
	bw := bufio.NewWriter(r.w)

	fmt.Fprintf(bw, "目的地: %s\n\n", strings.Join(ranking.Destinations, ", "))
	if len(ranking.Candidates) == 0 {
		fmt.Fprintln(bw, "条件を満たす駅はありません")
	}
	for _, c := range ranking.Candidates {
		fmt.Fprintf(bw, "#%d 駅名: %s, score: %d\n", c.Rank, c.Station, int64(c.Score))
		fmt.Fprintf(bw, "家賃相場: %s 万円\n", strconv.FormatFloat(c.Rent, 'f', -1, 64))
		fmt.Fprintf(bw, "線路: %s\n", strings.Join(c.Lines, ", "))
		fmt.Fprintln(bw, "到着時間:")
		for _, leg := range c.Legs {
			fmt.Fprintf(bw, "\t%s: %d分, 乗り換え回数: %d\n", leg.Destination, leg.Time, leg.TransitCount)
		}
		fmt.Fprintln(bw)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	return nil
}
