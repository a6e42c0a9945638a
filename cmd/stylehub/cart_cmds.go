package main

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
)

// cartView mirrors the cart payload of the HTTP API.
type cartView struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice float64           `json:"total_price"`
}

// wishlistView mirrors the wishlist payload of the HTTP API.
type wishlistView struct {
	ProductIDs []int            `json:"product_ids"`
	Products   []domain.Product `json:"products"`
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("invalid product id: " + arg)
	}
	return id, nil
}

func (c *cli) printCart(items []domain.CartItem) error {
	cart := domain.Cart(items)
	if c.jsonOutput {
		if items == nil {
			items = []domain.CartItem{}
		}
		return c.printJSON(cartView{Items: items, TotalItems: cart.TotalItems(), TotalPrice: cart.TotalPrice()})
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(c.out, "Your cart is empty.")
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tCOLOR\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t₹%.0f\t₹%.0f\n", it.ProductID, it.Name, it.Size, it.Color, it.Quantity, it.Price, it.Subtotal())
	}
	fmt.Fprintf(tw, "\t\t\t\t%d\t\t₹%.0f\n", cart.TotalItems(), cart.TotalPrice())
	return tw.Flush()
}

func newCartCmd(c *cli) *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		s, err := c.store(cmd.Context())
		if err != nil {
			return err
		}
		return c.printCart(s.CartItems())
	}

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local shopping cart",
		Args:  cobra.NoArgs,
		RunE:  list,
	}

	var size, color string
	lineFlags := func(sub *cobra.Command) *cobra.Command {
		sub.Flags().StringVar(&size, "size", "", "line size")
		sub.Flags().StringVar(&color, "color", "", "line color")
		return sub
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the cart",
			Args:  cobra.NoArgs,
			RunE:  list,
		},
		lineFlags(&cobra.Command{
			Use:   "add <id>",
			Short: "Add one unit of a product",
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
				if size != "" && !p.HasSize(size) {
					return apperrors.InvalidInput(fmt.Sprintf("size %s is not offered for %s", size, p.Name))
				}
				if color != "" && !p.HasColor(color) {
					return apperrors.InvalidInput(fmt.Sprintf("color %s is not offered for %s", color, p.Name))
				}

				s, err := c.store(cmd.Context())
				if err != nil {
					return err
				}
				return c.printCart(s.AddToCart(cmd.Context(), p, size, color))
			},
		}),
		lineFlags(&cobra.Command{
			Use:   "remove <id>",
			Short: "Remove a cart line",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				s, err := c.store(cmd.Context())
				if err != nil {
					return err
				}
				return c.printCart(s.RemoveFromCart(cmd.Context(), id, size, color))
			},
		}),
		lineFlags(&cobra.Command{
			Use:   "update <id> <quantity>",
			Short: "Set the quantity of a cart line; zero removes it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				qty, err := strconv.Atoi(args[1])
				if err != nil {
					return apperrors.InvalidInput("invalid quantity: " + args[1])
				}
				s, err := c.store(cmd.Context())
				if err != nil {
					return err
				}
				return c.printCart(s.UpdateQuantity(cmd.Context(), id, size, color, qty))
			},
		}),
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := c.store(cmd.Context())
				if err != nil {
					return err
				}
				s.ClearCart(cmd.Context())
				return c.printCart(s.CartItems())
			},
		},
		&cobra.Command{
			Use:   "checkout",
			Short: "Place an order for everything in the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := c.store(cmd.Context())
				if err != nil {
					return err
				}
				order, err := s.Checkout(cmd.Context())
				if err != nil {
					return err
				}
				if c.jsonOutput {
					return c.printJSON(order)
				}
				_, err = fmt.Fprintf(c.out, "Order %s: %d items, ₹%.0f\n", order.ID, order.TotalItems, order.TotalPrice)
				return err
			},
		},
	)
	return cmd
}

func newWishlistCmd(c *cli) *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		s, err := c.store(cmd.Context())
		if err != nil {
			return err
		}
		svc, err := c.catalogService(cmd.Context())
		if err != nil {
			return err
		}

		ids := s.WishlistItems()
		view := wishlistView{ProductIDs: ids, Products: make([]domain.Product, 0, len(ids))}
		for _, id := range ids {
			p, err := svc.GetByID(cmd.Context(), strconv.Itoa(id))
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			view.Products = append(view.Products, p)
		}

		if c.jsonOutput {
			if view.ProductIDs == nil {
				view.ProductIDs = []int{}
			}
			return c.printJSON(view)
		}
		if len(view.Products) == 0 {
			_, err := fmt.Fprintln(c.out, "Your wishlist is empty.")
			return err
		}
		return c.printProducts(view.Products)
	}

	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage the local wishlist",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the wishlist",
			Args:  cobra.NoArgs,
			RunE:  list,
		},
		&cobra.Command{
			Use:   "toggle <id>",
			Short: "Add a product to the wishlist, or remove it if already there",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				s, err := c.store(cmd.Context())
				if err != nil {
					return err
				}
				if !s.IsInWishlist(id) {
					svc, err := c.catalogService(cmd.Context())
					if err != nil {
						return err
					}
					if _, err := svc.GetByID(cmd.Context(), args[0]); err != nil {
						return err
					}
				}

				in := s.ToggleWishlist(cmd.Context(), id)
				if c.jsonOutput {
					return c.printJSON(map[string]any{"product_id": id, "in_wishlist": in})
				}
				return nil
			},
		},
	)
	return cmd
}
