package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Read and write comments on reviews",
}

var listCommentsCmd = &cobra.Command{
	Use:   "list [title-id] [review-id]",
	Short: "List the comments on a review",
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

		resp, err := newClient().ListComments(ctx, titleID, reviewID, page, pageSize)
		if err != nil {
			return fmt.Errorf("failed to list comments: %w", err)
		}
		if len(resp.Data) == 0 {
			fmt.Println("No comments yet.")
			return nil
		}
		for _, c := range resp.Data {
			fmt.Printf("%s (%s): %s\n", c.Author, c.PubDate.Format("2006-01-02 15:04"), c.Text)
		}
		printPage(resp.Page, resp.TotalPages, resp.Total)
		return nil
	},
}

var postCommentCmd = &cobra.Command{
	Use:   "post [title-id] [review-id] [text...]",
	Short: "Comment on a review",
	Args:  cobra.MinimumNArgs(3),
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

		c, err := newClient().CreateComment(ctx, titleID, reviewID, strings.Join(args[2:], " "))
		if err != nil {
			return fmt.Errorf("failed to post comment: %w", err)
		}
		success("Comment #%d posted", c.ID)
		return nil
	},
}

func init() {
	commentCmd.AddCommand(listCommentsCmd, postCommentCmd)
	addPageFlags(listCommentsCmd)
}
