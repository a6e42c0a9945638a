// Command stylehub runs the storefront API server and offers a local shopper
// CLI over the same catalog and cart/wishlist store.
package main

import (
	"context"
	"os"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
