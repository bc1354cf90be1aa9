package main

import (
	"github.com/spf13/cobra"

	"github.com/ogurasousui/hr-records/internal/core/assignment"
)

func (c *cli) assignmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assignment",
		Aliases: []string{"assignments", "assign"},
		Short:   "Assign employees to projects",
	}
	cmd.AddCommand(c.assignmentAddCmd(), c.assignmentRemoveCmd(), c.assignmentListCmd())
	return cmd
}

func (c *cli) assignmentAddCmd() *cobra.Command {
	var in assignment.AssignInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Assign an employee to a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := c.app.Assignments.Assign(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.print(created)
		},
	}

	cmd.Flags().Int64Var(&in.EmployeeID, "employee", 0, "employee id")
	cmd.Flags().Int64Var(&in.ProjectID, "project", 0, "project id")
	cmd.Flags().StringVar(&in.Role, "role", "", "role on the project")
	cmd.Flags().StringVar(&in.AssignmentDate, "date", "", "assignment date (defaults to today)")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func (c *cli) assignmentRemoveCmd() *cobra.Command {
	var in assignment.UnassignInput

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove an assignment by id or by employee/project pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Assignments.Unassign(cmd.Context(), in); err != nil {
				return err
			}
			return c.print(map[string]bool{"removed": true})
		},
	}

	cmd.Flags().Int64Var(&in.ID, "id", 0, "assignment id")
	cmd.Flags().Int64Var(&in.EmployeeID, "employee", 0, "employee id")
	cmd.Flags().Int64Var(&in.ProjectID, "project", 0, "project id")
	return cmd
}

func (c *cli) assignmentListCmd() *cobra.Command {
	var in assignment.ListAssignmentsInput

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := c.app.Assignments.ListAssignments(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.print(result)
		},
	}

	cmd.Flags().Int64Var(&in.EmployeeID, "employee", 0, "only assignments of this employee")
	cmd.Flags().Int64Var(&in.ProjectID, "project", 0, "only assignments on this project")
	cmd.Flags().IntVar(&in.PageSize, "page-size", 0, "page size (default 50, max 200)")
	cmd.Flags().StringVar(&in.PageToken, "page-token", "", "token returned by the previous page")
	return cmd
}
