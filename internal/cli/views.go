package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewViewsCmd создаёт команду views — список views дашборда.
func NewViewsCmd(env *Env) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "views",
		Short: "List dashboard views",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := env.Output()

			s, err := env.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			views := s.Dashboard.Views
			if category != "" {
				views = views[:0:0]
				for _, v := range s.Dashboard.Views {
					if v.Category.Slug == category {
						views = append(views, v)
					}
				}
			}

			headers := []string{"SLUG", "NAME", "KIND", "CATEGORY", "STEPS", "AUTO", "REFRESH"}
			rows := make([][]string, len(views))
			for i, v := range views {
				rows[i] = []string{
					v.Slug,
					v.Name,
					string(v.Kind()),
					v.Category.Slug,
					strconv.Itoa(len(v.Steps())),
					strconv.FormatBool(v.Execute.Auto),
					v.Refresh,
				}
			}

			out.Print(headers, rows, views)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Show only views of this category")

	return cmd
}

// NewCategoriesCmd создаёт команду categories.
func NewCategoriesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List view categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := env.Output()

			s, err := env.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			categories := s.Dashboard.Categories
			headers := []string{"SLUG", "NAME", "COLOR"}
			rows := make([][]string, len(categories))
			for i, c := range categories {
				rows[i] = []string{c.Slug, c.Name, c.Color}
			}

			out.Print(headers, rows, categories)
			return nil
		},
	}
}
