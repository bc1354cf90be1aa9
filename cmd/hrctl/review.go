package main

import (
	"github.com/spf13/cobra"

	"github.com/ogurasousui/hr-records/internal/core/review"
)

func (c *cli) reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "review",
		Aliases: []string{"reviews"},
		Short:   "Record and read performance reviews",
	}
	cmd.AddCommand(c.reviewSubmitCmd(), c.reviewListCmd())
	return cmd
}

func (c *cli) reviewSubmitCmd() *cobra.Command {
	var in review.SubmitReviewInput

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a review for an existing employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := c.app.HR.SubmitReview(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.print(created)
		},
	}

	cmd.Flags().Int64Var(&in.EmployeeID, "employee", 0, "employee id")
	cmd.Flags().StringVar(&in.ReviewDate, "date", "", "review date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.ReviewerName, "reviewer", "", "reviewer name")
	cmd.Flags().Float64Var(&in.OverallRating, "rating", 0, "overall rating between 1.0 and 5.0")
	cmd.Flags().StringSliceVar(&in.Strengths, "strength", nil, "strength (repeatable or comma separated)")
	cmd.Flags().StringSliceVar(&in.AreasForImprovement, "improve", nil, "area for improvement (repeatable or comma separated)")
	cmd.Flags().StringVar(&in.Comments, "comments", "", "free-form comments")
	cmd.Flags().StringSliceVar(&in.GoalsForNextPeriod, "goal", nil, "goal for the next period (repeatable or comma separated)")
	for _, name := range []string{"employee", "date", "reviewer", "rating"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (c *cli) reviewListCmd() *cobra.Command {
	var employeeID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviews, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				reviews []*review.Review
				err     error
			)
			if employeeID != 0 {
				reviews, err = c.app.Reviews.ListReviewsForEmployee(cmd.Context(), review.ListReviewsForEmployeeInput{EmployeeID: employeeID})
			} else {
				reviews, err = c.app.Reviews.ListAllReviews(cmd.Context())
			}
			if err != nil {
				return err
			}
			return c.print(reviews)
		},
	}

	cmd.Flags().Int64Var(&employeeID, "employee", 0, "only reviews of this employee")
	return cmd
}
