package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
)

func newProductsCmd(c *cli) *cobra.Command {
	var (
		criteria           domain.FilterCriteria
		sort               string
		minPrice, maxPrice float64
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products, optionally filtered and sorted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			option, err := domain.ParseSortOption(sort)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("min-price") || flags.Changed("max-price") {
				pr := domain.PriceRange{Min: minPrice, Max: math.Inf(1)}
				if flags.Changed("max-price") {
					pr.Max = maxPrice
				}
				criteria.PriceRange = &pr
			}

			svc, err := c.catalogService(cmd.Context())
			if err != nil {
				return err
			}
			products, err := svc.Browse(cmd.Context(), criteria, option)
			if err != nil {
				return err
			}
			return c.printProducts(products)
		},
	}

	f := cmd.Flags()
	f.StringVar(&criteria.Category, "category", "", "only this category (case-insensitive)")
	f.StringSliceVar(&criteria.Brands, "brand", nil, "only these brands (repeatable or comma-separated)")
	f.StringSliceVar(&criteria.Sizes, "size", nil, "products offered in any of these sizes")
	f.StringSliceVar(&criteria.Colors, "color", nil, "products offered in any of these colors")
	f.Float64Var(&minPrice, "min-price", 0, "lowest effective price, inclusive")
	f.Float64Var(&maxPrice, "max-price", 0, "highest effective price, inclusive")
	f.StringVar(&sort, "sort", string(domain.SortFeatured), "featured, price-low, price-high, rating or newest")
	return cmd
}

func newProductCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.catalogService(cmd.Context())
			if err != nil {
				return err
			}
			p, err := svc.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printProduct(p)
		},
	}
}

func newTrendingCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "List the highest rated products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.catalogService(cmd.Context())
			if err != nil {
				return err
			}
			products, err := svc.GetTrending(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return c.printProducts(products)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of products (default 8)")
	return cmd
}

func newNewArrivalsCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "new",
		Aliases: []string{"new-arrivals"},
		Short:   "List the newest products",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.catalogService(cmd.Context())
			if err != nil {
				return err
			}
			products, err := svc.GetNewArrivals(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return c.printProducts(products)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of products (default 8)")
	return cmd
}

func newRelatedCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "related <id>",
		Short: "List products sharing a category or brand with a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.catalogService(cmd.Context())
			if err != nil {
				return err
			}
			products, err := svc.GetRelated(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return c.printProducts(products)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of products (default 4)")
	return cmd
}

func newSearchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search product names, brands and categories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			svc, err := c.catalogService(cmd.Context())
			if err != nil {
				return err
			}
			products, err := svc.Search(cmd.Context(), query)
			if err != nil {
				return err
			}

			s, err := c.store(cmd.Context())
			if err != nil {
				return err
			}
			s.AddRecentSearch(cmd.Context(), query)

			return c.printProducts(products)
		},
	}
}

func newRecentCmd(c *cli) *cobra.Command {
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show or clear recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.store(cmd.Context())
			if err != nil {
				return err
			}
			if clearAll {
				s.ClearRecentSearches(cmd.Context())
			}

			recent := s.RecentSearches()
			if c.jsonOutput {
				if recent == nil {
					recent = []string{}
				}
				return c.printJSON(recent)
			}
			if len(recent) == 0 {
				_, err := fmt.Fprintln(c.out, "No recent searches.")
				return err
			}
			for i, q := range recent {
				fmt.Fprintf(c.out, "%d. %s\n", i+1, q)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "forget all recent searches")
	return cmd
}
