package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const (
	formatText  = "text"
	formatJSON  = "json"
	formatTable = "table"
)

// view is a rendered command result. data is what --output json prints;
// headers and rows feed the text and table renderers.
type view struct {
	title   string
	headers []string
	rows    [][]string
	data    interface{}
	// record prints the single row as "header: value" lines in text mode.
	record bool
	footer string
}

// render writes v to the command's stdout in the selected format.
func render(cmd *cobra.Command, format string, v view) error {
	out := cmd.OutOrStdout()
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v.data)
	case formatTable:
		return renderTable(out, v)
	default:
		renderText(out, v)
		return nil
	}
}

func renderTable(out io.Writer, v view) error {
	table := tablewriter.NewWriter(out)
	table.Header(v.headers)
	for _, row := range v.rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	if v.footer != "" {
		fmt.Fprintln(out, v.footer)
	}
	return nil
}

func renderText(out io.Writer, v view) {
	if v.title != "" {
		fmt.Fprintln(out, color.New(color.Bold).Sprint(v.title))
	}
	if len(v.rows) == 0 {
		fmt.Fprintln(out, "  (no results)")
		return
	}

	if v.record {
		width := 0
		for _, h := range v.headers {
			width = max(width, len(h))
		}
		for i, h := range v.headers {
			fmt.Fprintf(out, "  %-*s  %s\n", width+1, h+":", cell(v.rows[0], i))
		}
	} else {
		for i, row := range v.rows {
			fmt.Fprintf(out, "%3d. %s\n", i+1, strings.Join(row, "  "))
		}
	}
	if v.footer != "" {
		fmt.Fprintln(out, v.footer)
	}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// growth formats a percentage change, green when positive and red when
// negative.
func growth(pct float64) string {
	s := strconv.FormatFloat(pct, 'f', 1, 64) + "%"
	switch {
	case pct > 0:
		return color.GreenString("+" + s)
	case pct < 0:
		return color.RedString(s)
	default:
		return s
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

// truncate shortens s to n runes with a trailing ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

//Personal.AI order the ending
