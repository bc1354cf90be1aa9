package main

import (
	"github.com/spf13/cobra"

	"github.com/ogurasousui/hr-records/internal/core/hr"
	"github.com/ogurasousui/hr-records/internal/core/project"
)

func (c *cli) projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "proj"},
		Short:   "Manage projects",
	}
	cmd.AddCommand(
		c.projectAddCmd(),
		c.projectGetCmd(),
		c.projectListCmd(),
		c.projectUpdateCmd(),
		c.projectDeleteCmd(),
	)
	return cmd
}

func (c *cli) projectAddCmd() *cobra.Command {
	var in project.CreateProjectInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := c.app.Projects.CreateProject(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.print(created)
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "project name")
	cmd.Flags().StringVar(&in.StartDate, "start-date", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.EndDate, "end-date", "", "optional end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Status, "status", "", "Planning, Active, On Hold or Completed (default Planning)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start-date")
	return cmd
}

func (c *cli) projectGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			found, err := c.app.Projects.GetProject(cmd.Context(), project.GetProjectInput{ID: id})
			if err != nil {
				return err
			}
			return c.print(found)
		},
	}
}

func (c *cli) projectListCmd() *cobra.Command {
	var in project.ListProjectsInput

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := c.app.Projects.ListProjects(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.print(result)
		},
	}

	cmd.Flags().StringVar(&in.Status, "status", "", "only projects with this status")
	cmd.Flags().StringVar(&in.Search, "search", "", "case-insensitive substring of the project name")
	cmd.Flags().StringVar(&in.SortBy, "sort", "", "sort key (name, start_date, status)")
	cmd.Flags().IntVar(&in.PageSize, "page-size", 0, "page size (default 50, max 200)")
	cmd.Flags().StringVar(&in.PageToken, "page-token", "", "token returned by the previous page")
	return cmd
}

func (c *cli) projectUpdateCmd() *cobra.Command {
	var name, startDate, endDate, status string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a project; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			in := project.UpdateProjectInput{ID: id}
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = &name
			}
			if flags.Changed("start-date") {
				in.StartDate = &startDate
			}
			if flags.Changed("end-date") {
				in.EndDate = &endDate
			}
			if flags.Changed("status") {
				in.Status = &status
			}

			updated, err := c.app.Projects.UpdateProject(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.print(updated)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&startDate, "start-date", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "end date; pass an empty value to clear it")
	cmd.Flags().StringVar(&status, "status", "", "Planning, Active, On Hold or Completed")
	return cmd
}

func (c *cli) projectDeleteCmd() *cobra.Command {
	var in hr.DeleteProjectInput

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			in.ID = id
			result, err := c.app.HR.DeleteProject(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.print(result)
		},
	}

	cmd.Flags().BoolVar(&in.Cascade, "cascade", false, "remove the project's assignments first")
	return cmd
}
