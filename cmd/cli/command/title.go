package command

import (
	"fmt"
	"strconv"
	"strings"

	"yamdb/cmd/cli/command/client"
	"yamdb/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Browse and manage titles",
}

var titleFilter client.TitleFilter

var listTitlesCmd = &cobra.Command{
	Use:   "list",
	Short: "List titles with optional filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		resp, err := newClient().ListTitles(ctx, titleFilter, page, pageSize)
		if err != nil {
			return fmt.Errorf("failed to list titles: %w", err)
		}
		if len(resp.Data) == 0 {
			fmt.Println("No titles found.")
			return nil
		}
		for _, t := range resp.Data {
			fmt.Printf("%-6d %-40s %d  %s\n", t.ID, t.Name, t.Year, formatRating(t.Rating))
		}
		printPage(resp.Page, resp.TotalPages, resp.Total)
		return nil
	},
}

var getTitleCmd = &cobra.Command{
	Use:   "get [title-id]",
	Short: "Show a title with its category, genres and rating",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		t, err := newClient().GetTitle(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get title: %w", err)
		}
		printTitle(t)
		return nil
	},
}

var createTitleCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a title (admin only)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")
		description, _ := cmd.Flags().GetString("description")
		category, _ := cmd.Flags().GetString("category")
		genres, _ := cmd.Flags().GetStringSlice("genre")

		req := dto.CreateTitleDTO{Name: strings.Join(args, " "), Year: &year, Genre: genres}
		if description != "" {
			req.Description = &description
		}
		if category != "" {
			req.Category = &category
		}

		ctx, cancel := commandContext()
		defer cancel()

		t, err := newClient().CreateTitle(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to create title: %w", err)
		}
		success("Title created")
		printTitle(t)
		return nil
	},
}

var deleteTitleCmd = &cobra.Command{
	Use:   "delete [title-id]",
	Short: "Delete a title and its reviews (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		if err := newClient().DeleteTitle(ctx, id); err != nil {
			return fmt.Errorf("failed to delete title: %w", err)
		}
		success("Title %d deleted", id)
		return nil
	},
}

func init() {
	titleCmd.AddCommand(listTitlesCmd, getTitleCmd, createTitleCmd, deleteTitleCmd)

	listTitlesCmd.Flags().StringVar(&titleFilter.Name, "name", "", "name contains (case-insensitive)")
	listTitlesCmd.Flags().IntVar(&titleFilter.Year, "year", 0, "release year")
	listTitlesCmd.Flags().StringVar(&titleFilter.Genre, "genre", "", "genre slug")
	listTitlesCmd.Flags().StringVar(&titleFilter.Category, "category", "", "category slug")
	addPageFlags(listTitlesCmd)

	createTitleCmd.Flags().Int("year", 0, "release year")
	createTitleCmd.Flags().String("description", "", "description")
	createTitleCmd.Flags().String("category", "", "category slug")
	createTitleCmd.Flags().StringSlice("genre", nil, "genre slugs (repeat or comma separate)")
	createTitleCmd.MarkFlagRequired("year")
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s ID: %q", what, raw)
	}
	return id, nil
}

func formatRating(r *float64) string {
	if r == nil {
		return "not rated"
	}
	return fmt.Sprintf("%.1f/10", *r)
}

func printTitle(t *dto.TitleResponse) {
	fmt.Printf("ID: %d\n", t.ID)
	fmt.Printf("Name: %s\n", t.Name)
	fmt.Printf("Year: %d\n", t.Year)
	fmt.Printf("Rating: %s\n", formatRating(t.Rating))
	if t.Category != nil {
		fmt.Printf("Category: %s (%s)\n", t.Category.Name, t.Category.Slug)
	}
	if len(t.Genre) > 0 {
		names := make([]string, 0, len(t.Genre))
		for _, g := range t.Genre {
			names = append(names, g.Name)
		}
		fmt.Printf("Genres: %s\n", strings.Join(names, ", "))
	}
	if t.Description != nil {
		fmt.Printf("\n%s\n", *t.Description)
	}
}
