package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/catalog"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/notify"
	badgerstore "github.com/apper-canvas/stylehub-crypto-chip/internal/repository/badger"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/service"
	"github.com/apper-canvas/stylehub-crypto-chip/internal/store"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
)

// cliSession is the fixed session id of the local shopper.
const cliSession = "cli"

// cli holds the flags and lazily opened resources shared by all commands.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	dataDir     string
	catalogPath string
	logLevel    string
	jsonOutput  bool

	logger  *slog.Logger
	catalog *service.CatalogService
	db      *badgerstore.Store
	shopper *store.Store
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stylehub"
	}
	return filepath.Join(home, ".stylehub")
}

// run executes the command line args and releases the local store, even when
// the command fails.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	root, c := newRootCmd(in, out, errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := c.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(in io.Reader, out, errOut io.Writer) (*cobra.Command, *cli) {
	c := &cli{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:          "stylehub",
		Short:        "StyleHub storefront server and shopper CLI",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.logger = logger.NewWithWriter("stylehub-cli", c.logLevel, c.errOut)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&c.dataDir, "data-dir", defaultDataDir(), "directory holding the local cart and wishlist")
	pf.StringVar(&c.catalogPath, "catalog", "", "read the catalog from this JSON file instead of the built-in one")
	pf.StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVar(&c.jsonOutput, "json", false, "print JSON instead of tables")

	root.AddCommand(
		newServeCmd(),
		newProductsCmd(c),
		newProductCmd(c),
		newTrendingCmd(c),
		newNewArrivalsCmd(c),
		newRelatedCmd(c),
		newSearchCmd(c),
		newRecentCmd(c),
		newSuggestCmd(c),
		newCartCmd(c),
		newWishlistCmd(c),
	)
	return root, c
}

// catalogService loads the catalog on first use.
func (c *cli) catalogService(ctx context.Context) (*service.CatalogService, error) {
	if c.catalog != nil {
		return c.catalog, nil
	}

	var source catalog.Source = catalog.NewEmbeddedSource()
	if c.catalogPath != "" {
		source = catalog.NewFileSource(c.catalogPath, c.logger)
	}

	svc := service.NewCatalogService(source, c.logger)
	if err := svc.Load(ctx); err != nil {
		return nil, err
	}
	c.catalog = svc
	return svc, nil
}

// store opens the local shopper state on first use.
func (c *cli) store(ctx context.Context) (*store.Store, error) {
	if c.shopper != nil {
		return c.shopper, nil
	}

	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := badgerstore.Open(badgerstore.Config{Path: c.dataDir, SyncWrites: true, Logger: c.logger})
	if err != nil {
		return nil, err
	}
	c.db = db

	printer := notify.Func(func(_ context.Context, n notify.Notification) {
		mark := "•"
		if n.Severity == notify.SeveritySuccess {
			mark = "✓"
		}
		fmt.Fprintf(c.errOut, "%s %s\n", mark, n.Message)
	})
	c.shopper = store.Open(ctx, db, notify.NewMulti(c.logger, printer), c.logger, store.WithSession(cliSession))
	return c.shopper, nil
}

func (c *cli) close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db, c.shopper = nil, nil
	return err
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printProducts(products []domain.Product) error {
	if c.jsonOutput {
		if products == nil {
			products = []domain.Product{}
		}
		return c.printJSON(products)
	}
	if len(products) == 0 {
		_, err := fmt.Fprintln(c.out, "No products found.")
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tCATEGORY\tPRICE\tRATING")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.1f\n", p.ID, p.Name, p.Brand, p.Category, formatPrice(p), p.Rating)
	}
	return tw.Flush()
}

func (c *cli) printProduct(p domain.Product) error {
	if c.jsonOutput {
		return c.printJSON(p)
	}
	fmt.Fprintf(c.out, "%s by %s  (#%d)\n", p.Name, p.Brand, p.ID)
	fmt.Fprintf(c.out, "Category: %s\n", p.Category)
	fmt.Fprintf(c.out, "Price:    %s\n", formatPrice(p))
	fmt.Fprintf(c.out, "Rating:   %.1f (%d reviews)\n", p.Rating, p.ReviewCount)
	fmt.Fprintf(c.out, "Sizes:    %s\n", strings.Join(p.Sizes, ", "))
	fmt.Fprintf(c.out, "Colors:   %s\n", strings.Join(p.Colors, ", "))
	if p.Description != "" {
		fmt.Fprintf(c.out, "\n%s\n", p.Description)
	}
	return nil
}

func formatPrice(p domain.Product) string {
	if p.HasDiscount() {
		return fmt.Sprintf("₹%.0f (was ₹%.0f)", p.EffectivePrice(), p.Price)
	}
	return fmt.Sprintf("₹%.0f", p.Price)
}
