package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lessonvault/internal/catalog"
	"lessonvault/internal/logging"
)

func newCoursesCommand(ctx *commandContext) *cobra.Command {
	var filter string
	var ignoreCase bool

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List active and archived courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			session, err := authenticate(cmd.Context(), cfg, cmd.OutOrStdout(), logging.NewNop(), false)
			if err != nil {
				return err
			}
			client, err := newPlatformClient(cfg, session, logging.NewNop())
			if err != nil {
				return err
			}
			courses, err := catalog.FetchCourses(cmd.Context(), client)
			if err != nil {
				return explainAuthError(err)
			}
			if !cmd.Flags().Changed("filter") {
				filter = cfg.Download.CourseFilter
			}
			matcher := catalog.NewMatcher(filter, ignoreCase || cfg.Download.CaseInsensitiveFilters)
			courses = catalog.FilterCourses(courses, matcher)

			out := cmd.OutOrStdout()
			if len(courses) == 0 {
				fmt.Fprintln(out, "No courses matched.")
				return nil
			}
			fmt.Fprintln(out, renderCourses(courses))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only courses whose name contains this text")
	cmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "Match the filter case-insensitively")
	return cmd
}

func renderCourses(courses []catalog.Course) string {
	view := tableView{
		Columns: []tableColumn{{Title: "ID", Numeric: true}, {Title: "Name"}, {Title: "Teacher"}, {Title: "Folder"}},
	}
	for _, c := range courses {
		view.Rows = append(view.Rows, []string{c.ID, c.Name, c.TeacherName, c.FolderName()})
	}
	return view.render()
}
