package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"chessdb/models"
)

const dateLayout = "2006-01-02"

// renderTable prints rows as an aligned plain-text table, or "(no rows)"
// when there is nothing to show.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

func optStr(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func optFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func optDate(v *time.Time) string {
	if v == nil {
		return "-"
	}
	return v.Format(dateLayout)
}

// optResult prints an unrecorded result as "*", the PGN convention.
func optResult(v *models.GameResult) string {
	if v == nil {
		return "*"
	}
	return string(*v)
}

func optCategory(v *models.TournamentCategory) string {
	if v == nil {
		return "-"
	}
	return string(*v)
}
