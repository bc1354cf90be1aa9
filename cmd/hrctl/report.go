package main

import (
	"github.com/spf13/cobra"

	"github.com/ogurasousui/hr-records/internal/core/report"
)

func (c *cli) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Aliases: []string{"reports"},
		Short:   "Cross-store reports",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "summary <employee-id>",
			Short: "Employee with assignments, reviews and average rating",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0], "employee id")
				if err != nil {
					return err
				}
				return c.run(c.app.Reports.EmployeeSummary(cmd.Context(), id))
			},
		},
		&cobra.Command{
			Use:   "team <project-id>",
			Short: "Project with its assigned employees",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0], "project id")
				if err != nil {
					return err
				}
				return c.run(c.app.Reports.ProjectTeamView(cmd.Context(), id))
			},
		},
		&cobra.Command{
			Use:   "departments",
			Short: "Employee count per department",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.run(c.app.Reports.DepartmentDistribution(cmd.Context()))
			},
		},
		c.reportTopCmd(),
		&cobra.Command{
			Use:   "assignments",
			Short: "Every assignment joined with employee and project",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.run(c.app.Reports.EmployeeProjectReport(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "dashboard",
			Short: "Headline counts across both stores",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.run(c.app.Reports.Dashboard(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "statuses",
			Short: "Project count per status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.run(c.app.Reports.ProjectStatusDistribution(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "ratings",
			Short: "Average rating per department",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.run(c.app.Reports.DepartmentRatings(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Rating statistics over all reviews",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.run(c.app.Reports.RatingStatistics(cmd.Context()))
			},
		},
		c.reportLoadCmd(),
	)
	return cmd
}

func (c *cli) reportTopCmd() *cobra.Command {
	in := report.TopPerformersInput{Limit: 5, MinReviews: 1}

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Employees with the highest average rating",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(c.app.Reports.TopPerformers(cmd.Context(), in))
		},
	}

	cmd.Flags().IntVar(&in.Limit, "limit", in.Limit, "number of employees to return")
	cmd.Flags().IntVar(&in.MinReviews, "min-reviews", in.MinReviews, "minimum number of reviews to be ranked")
	return cmd
}

func (c *cli) reportLoadCmd() *cobra.Command {
	limit := 10

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Employees with the most assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(c.app.Reports.AssignmentLoad(cmd.Context(), limit))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", limit, "number of employees to return")
	return cmd
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "StoreCheck both stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.print(c.app.StoreStatus(cmd.Context()))
		},
	}
}

// run は結果とエラーの組をそのまま出力へ流します。
func (c *cli) run(v any, err error) error {
	if err != nil {
		return err
	}
	return c.print(v)
}
