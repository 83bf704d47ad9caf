package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var previewRows int

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	nullStyle   = cellStyle.Foreground(lipgloss.Color("241"))
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show the first rows of a file as a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := previewRows
		if !cmd.Flags().Changed("rows") {
			if c, err := effectiveConfig(); err == nil && c.PreviewRows > 0 {
				n = c.PreviewRows
			}
		}
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		head := t.Head(n)
		rows := make([][]string, head.NumRows())
		nulls := make(map[[2]int]bool)
		for i := range rows {
			vals := head.Row(i)
			row := make([]string, len(vals))
			for j, v := range vals {
				if v.IsNull() {
					row[j] = "null"
					nulls[[2]int{i, j}] = true
					continue
				}
				row[j] = v.String()
			}
			rows[i] = row
		}
		tbl := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers(head.Names()...).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				case nulls[[2]int{row, col}]:
					return nullStyle
				default:
					return cellStyle
				}
			})
		fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d rows, %d columns\n", head.NumRows(), t.NumRows(), t.NumCols())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", 10, "number of rows to show (default from config preview_rows)")
}
