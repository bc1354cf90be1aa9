package main

import (
	"github.com/spf13/cobra"

	"github.com/ogurasousui/hr-records/internal/core/employee"
	"github.com/ogurasousui/hr-records/internal/core/hr"
)

func (c *cli) employeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employee",
		Aliases: []string{"employees", "emp"},
		Short:   "Manage employees",
	}
	cmd.AddCommand(
		c.employeeAddCmd(),
		c.employeeGetCmd(),
		c.employeeListCmd(),
		c.employeeUpdateCmd(),
		c.employeeDeleteCmd(),
	)
	return cmd
}

func (c *cli) employeeAddCmd() *cobra.Command {
	var in employee.CreateEmployeeInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := c.app.Employees.CreateEmployee(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.print(created)
		},
	}

	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address (unique, case-insensitive)")
	cmd.Flags().StringVar(&in.HireDate, "hire-date", "", "hire date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Department, "department", "", "department")
	for _, name := range []string{"first-name", "last-name", "email", "hire-date", "department"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (c *cli) employeeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "employee id")
			if err != nil {
				return err
			}
			found, err := c.app.Employees.GetEmployee(cmd.Context(), employee.GetEmployeeInput{ID: id})
			if err != nil {
				return err
			}
			return c.print(found)
		},
	}
}

func (c *cli) employeeListCmd() *cobra.Command {
	var in employee.ListEmployeesInput

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := c.app.Employees.ListEmployees(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.print(result)
		},
	}

	cmd.Flags().StringVar(&in.Department, "department", "", "only employees in this department")
	cmd.Flags().StringVar(&in.Search, "search", "", "case-insensitive substring of name, email or department")
	cmd.Flags().StringVar(&in.SortBy, "sort", "", "sort key (first_name, last_name, email, hire_date, department)")
	cmd.Flags().IntVar(&in.PageSize, "page-size", 0, "page size (default 50, max 200)")
	cmd.Flags().StringVar(&in.PageToken, "page-token", "", "token returned by the previous page")
	return cmd
}

func (c *cli) employeeUpdateCmd() *cobra.Command {
	var firstName, lastName, email, hireDate, department string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an employee; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "employee id")
			if err != nil {
				return err
			}
			in := employee.UpdateEmployeeInput{ID: id}
			flags := cmd.Flags()
			if flags.Changed("first-name") {
				in.FirstName = &firstName
			}
			if flags.Changed("last-name") {
				in.LastName = &lastName
			}
			if flags.Changed("email") {
				in.Email = &email
			}
			if flags.Changed("hire-date") {
				in.HireDate = &hireDate
			}
			if flags.Changed("department") {
				in.Department = &department
			}

			updated, err := c.app.Employees.UpdateEmployee(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.print(updated)
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&hireDate, "hire-date", "", "hire date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&department, "department", "", "department")
	return cmd
}

func (c *cli) employeeDeleteCmd() *cobra.Command {
	var in hr.DeleteEmployeeInput

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an employee",
		Long: `Delete an employee.

Without --cascade the deletion is refused while the employee still has project
assignments. With --cascade the assignments are removed first. Reviews are kept
unless --purge-reviews is also given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "employee id")
			if err != nil {
				return err
			}
			in.ID = id
			result, err := c.app.HR.DeleteEmployee(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.print(result)
		},
	}

	cmd.Flags().BoolVar(&in.Cascade, "cascade", false, "remove the employee's assignments first")
	cmd.Flags().BoolVar(&in.PurgeReviews, "purge-reviews", false, "also delete the employee's reviews (requires --cascade)")
	return cmd
}
