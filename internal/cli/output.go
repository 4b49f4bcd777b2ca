package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// printer writes either a table or the JSON form of v.
type printer struct {
	w    io.Writer
	json bool
}

func (o *options) printer(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout(), json: o.jsonOut}
}

// table prints rows under header. When JSON output is on v is printed instead.
func (p printer) table(v any, header []string, rows [][]string) error {
	if p.json {
		return p.value(v)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (p printer) value(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// message prints a human readable line, or {"message": ...} as JSON.
func (p printer) message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.json {
		return p.value(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.w, msg)
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
