package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/karkkilista/internal/auth"
	"github.com/mmynk/karkkilista/internal/client"
	"github.com/mmynk/karkkilista/internal/editor"
	"github.com/mmynk/karkkilista/internal/listsync"
)

var (
	watch bool

	itemName     string
	itemAmount   int
	itemURL      string
	itemPrice    string
	fetchThenAdd bool
)

// usersCmd is the / route: every owner, live.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List everyone who has a list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		d := listsync.OpenDirectory(cmd.Context(), c)
		defer d.Close()

		render := func() { renderDirectory(cmd.OutOrStdout(), d) }
		return show(cmd.Context(), d.OnChange, d.Synced, render)
	},
}

// listCmd is the /list/{ownerId} route.
var listCmd = &cobra.Command{
	Use:   "list <ownerID>",
	Short: "Show a list and its total",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		v := listsync.Open(cmd.Context(), c, args[0])
		defer v.Close()

		ready := func() bool { return v.Synced() && !v.Loading() }
		render := func() { renderList(cmd.OutOrStdout(), v, c) }
		return show(cmd.Context(), v.OnChange, ready, render)
	},
}

var addCmd = &cobra.Command{
	Use:   "add <ownerID>",
	Short: "Add an item to your list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, args[0], func(ctx context.Context, e *editor.Editor) error {
			e.SetName(itemName)
			e.SetURL(itemURL)
			e.SetQuantity(itemAmount)
			e.SetUnitPrice(itemPrice)
			return addItem(ctx, cmd.OutOrStdout(), e)
		})
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <ownerID> <url>",
	Short: "Fill the item form from a product page",
	Long: `Fetches the page through the server, reads the product name and price
from it and shows the resulting item. With --add the item is also added.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, args[0], func(ctx context.Context, e *editor.Editor) error {
			e.SetQuantity(itemAmount)
			e.FetchExternal(ctx, args[1])

			f := e.Form()
			fmt.Fprintf(cmd.OutOrStdout(), "%s * %d // %s // %s (unit price %q)\n",
				f.Name, f.Quantity, f.URL, f.Total, f.UnitPrice)

			if !fetchThenAdd {
				return nil
			}
			return addItem(ctx, cmd.OutOrStdout(), e)
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <ownerID> <itemID>",
	Short: "Remove an item from your list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, args[0], func(ctx context.Context, e *editor.Editor) error {
			if !e.CanEdit() {
				printErr("Only the owner of this list can remove items.")
				return nil
			}
			if err := e.RemoveItem(ctx, args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed", args[1])
			return nil
		})
	},
}

func init() {
	usersCmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep showing changes")
	listCmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep showing changes")

	addCmd.Flags().StringVar(&itemName, "name", "", "item name")
	addCmd.Flags().IntVar(&itemAmount, "amount", 1, "quantity")
	addCmd.Flags().StringVar(&itemURL, "url", "", "product page")
	addCmd.Flags().StringVar(&itemPrice, "price", "", "unit price, e.g. 2,50€")

	fetchCmd.Flags().IntVar(&itemAmount, "amount", 1, "quantity")
	fetchCmd.Flags().BoolVar(&fetchThenAdd, "add", false, "add the fetched item")
}

// withEditor opens the list, waits for its owner and runs fn with an editor.
func withEditor(cmd *cobra.Command, ownerID string, fn func(context.Context, *editor.Editor) error) error {
	c, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	v := listsync.Open(cmd.Context(), c, ownerID)
	defer v.Close()

	if !waitFor(cmd.Context(), v.OnChange, func() bool { return !v.Loading() }, timeout) {
		return fmt.Errorf("list %s did not load", ownerID)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	return fn(ctx, editor.New(c, v, c, c.Scraper()))
}

func addItem(ctx context.Context, out io.Writer, e *editor.Editor) error {
	if !e.CanEdit() {
		printErr("Only the owner of this list can add items.")
		return nil
	}
	f := e.Form()
	if err := e.AddItem(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added %s * %d // %s\n", f.Name, f.Quantity, f.Total)
	return nil
}

// show renders once ready (or after the timeout) and, with --watch, again
// after every change until interrupted.
func show(ctx context.Context, onChange func(func()) func(), ready func() bool, render func()) error {
	waitFor(ctx, onChange, ready, timeout)
	render()
	if !watch {
		return nil
	}

	changed := make(chan struct{}, 1)
	cancel := onChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			render()
		}
	}
}

// waitFor blocks until cond holds, ctx ends or d passes. It reports cond.
func waitFor(ctx context.Context, onChange func(func()) func(), cond func() bool, d time.Duration) bool {
	changed := make(chan struct{}, 1)
	cancel := onChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer cancel()

	deadline := time.NewTimer(d)
	defer deadline.Stop()

	for !cond() {
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-changed:
		}
	}
	return true
}

func renderDirectory(out io.Writer, d *listsync.Directory) {
	fmt.Fprintln(out, "Karkkilista")
	for _, o := range d.Owners() {
		fmt.Fprintf(out, "  %s  /list/%s\n", o.Username, o.ID)
	}
}

func renderList(out io.Writer, v *listsync.View, c *client.Client) {
	owner := v.Owner()
	if owner == nil {
		fmt.Fprintln(out, "Loading...")
		return
	}

	fmt.Fprintf(out, "Käyttäjän %s Karkkilista\n", owner.Username)
	canEdit := auth.CanEdit(c.Identity(), owner)
	for _, item := range v.Items() {
		line := fmt.Sprintf("  %s * %d // %s // %s", item.Name, item.Amount, item.URL, item.Price)
		if canEdit {
			line += "  [" + item.ID + "]"
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "  Total: %s\n", v.GrandTotal())
}
