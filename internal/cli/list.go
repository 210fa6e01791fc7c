package cli

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subview/internal/subtitle"
)

// subtitle text wider than this wraps inside its cell
const textColumnWidth = 60

var listCmd = &cobra.Command{
	Use:   "list [subtitle_file]",
	Short: "Print the subtitles of an SRT file as a table",
	Long: `Parse an SRT file and print its subtitles in file order.

Examples:
  subview list movie.srt
  subview list movie.srt --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().
		IntP("limit", "n", 0, "Show at most this many subtitles (0 for all)")
}

func runList(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("invalid limit %d", limit)
	}

	records, err := subtitle.Load(subtitlePath)
	if err != nil {
		return err
	}

	logger.Debugw("Parsed subtitle file",
		"file", subtitlePath,
		"count", len(records),
	)

	fmt.Fprintln(cmd.OutOrStdout(), recordsTable(records, limit))
	if limit > 0 && len(records) > limit {
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d subtitles shown\n", limit, len(records))
	}
	return nil
}

func recordsTable(records []subtitle.Record, limit int) string {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			r.StartTime,
			r.EndTime,
			formatDuration(r),
			r.Text,
		})
	}

	return renderTable([]column{
		{title: "ID", align: text.AlignRight},
		{title: "Start"},
		{title: "End"},
		{title: "Duration", align: text.AlignRight},
		{title: "Text", wrap: textColumnWidth},
	}, rows)
}

func formatDuration(r subtitle.Record) string {
	start, err := r.StartMillis()
	if err != nil {
		return "?"
	}
	end, err := r.EndMillis()
	if err != nil {
		return "?"
	}
	return fmt.Sprintf("%.3fs", float64(end-start)/1000)
}
