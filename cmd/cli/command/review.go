package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Read and write reviews",
	Long:  `Reviews score a title from 1 to 10. Each user may review a title once.`,
}

var listReviewsCmd = &cobra.Command{
	Use:   "list [title-id]",
	Short: "List the reviews of a title, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		resp, err := newClient().ListReviews(ctx, titleID, page, pageSize)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}
		if len(resp.Data) == 0 {
			fmt.Printf("No reviews for title %d yet.\n", titleID)
			return nil
		}
		for _, r := range resp.Data {
			fmt.Printf("#%d by %s, %d/10 (%s)\n", r.ID, r.Author, r.Score, r.PubDate.Format("2006-01-02 15:04"))
			fmt.Println(r.Text)
			fmt.Println(strings.Repeat("-", 50))
		}
		printPage(resp.Page, resp.TotalPages, resp.Total)
		return nil
	},
}

var postReviewCmd = &cobra.Command{
	Use:   "post [title-id] [score] [text...]",
	Short: "Review a title",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		score, err := strconv.Atoi(args[1])
		if err != nil || score < 1 || score > 10 {
			return fmt.Errorf("score must be an integer between 1 and 10")
		}

		ctx, cancel := commandContext()
		defer cancel()

		r, err := newClient().CreateReview(ctx, titleID, strings.Join(args[2:], " "), score)
		if err != nil {
			return fmt.Errorf("failed to post review: %w", err)
		}
		success("Review #%d posted", r.ID)
		return nil
	},
}

var deleteReviewCmd = &cobra.Command{
	Use:   "delete [title-id] [review-id]",
	Short: "Delete a review (author, moderator or admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		reviewID, err := parseID(args[1], "review")
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		if err := newClient().DeleteReview(ctx, titleID, reviewID); err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		success("Review #%d deleted", reviewID)
		return nil
	},
}

func init() {
	reviewCmd.AddCommand(listReviewsCmd, postReviewCmd, deleteReviewCmd)
	addPageFlags(listReviewsCmd)
}
