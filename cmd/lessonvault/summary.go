package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"lessonvault/internal/workflow"
)

func renderSummary(summary workflow.Summary) string {
	view := tableView{
		Columns: []tableColumn{
			{Title: "Course"},
			{Title: "State"},
			{Title: "Lessons", Numeric: true},
			{Title: "Done", Numeric: true},
			{Title: "Skipped", Numeric: true},
			{Title: "Failed", Numeric: true},
		},
	}
	lessons := 0
	for _, c := range summary.Courses {
		lessons += c.Lessons
		view.Rows = append(view.Rows, []string{
			c.Course.FolderName(),
			string(c.State),
			strconv.Itoa(c.Lessons),
			strconv.Itoa(c.Units.Completed),
			strconv.Itoa(c.Units.Skipped),
			strconv.Itoa(c.Units.Failed),
		})
	}
	if len(summary.Courses) > 1 {
		view.Footer = []string{
			"Total", "",
			strconv.Itoa(lessons),
			strconv.Itoa(summary.Units.Completed),
			strconv.Itoa(summary.Units.Skipped),
			strconv.Itoa(summary.Units.Failed),
		}
	}

	var b strings.Builder
	b.WriteString(view.render())
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Run %s: %d completed, %d skipped, %d failed in %s",
		summary.RunID,
		summary.Units.Completed,
		summary.Units.Skipped,
		summary.Units.Failed,
		summary.Elapsed.Round(time.Second),
	)
	if n := summary.Count(workflow.CourseCancelled); n > 0 {
		fmt.Fprintf(&b, " (%d courses cancelled)", n)
	}
	return b.String()
}
