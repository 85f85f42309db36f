// Package editor is the add-item form of a list page and the add and remove
// actions behind it.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmynk/karkkilista/internal/auth"
	"github.com/mmynk/karkkilista/internal/models"
	"github.com/mmynk/karkkilista/internal/money"
	"github.com/mmynk/karkkilista/internal/scrape"
)

// Form holds what the user has typed so far. Total is always the unit price
// times the quantity, in the stored price format.
type Form struct {
	Name      string
	Quantity  int
	URL       string
	UnitPrice string
	Total     string
}

// NewForm returns the empty form.
func NewForm() Form {
	return Form{Quantity: 1, Total: money.Zero.String()}
}

// Session reports who is signed in.
type Session interface {
	Identity() *models.Identity
}

// List is the list being edited.
type List interface {
	OwnerID() string
	Owner() *models.Owner
	GrandTotal() money.Money
}

// Writer performs the list mutations.
type Writer interface {
	AddItem(ctx context.Context, ownerID string, item models.Item) (*models.Item, error)
	RemoveItem(ctx context.Context, ownerID, itemID string) error
}

// Scraper reads a product from an external page.
type Scraper interface {
	Fetch(ctx context.Context, url string) (scrape.Product, error)
}

// Editor edits one list on behalf of the current session.
type Editor struct {
	session Session
	list    List
	writer  Writer
	scraper Scraper

	mu   sync.Mutex
	form Form
}

// New creates an editor with an empty form.
func New(session Session, list List, writer Writer, scraper Scraper) *Editor {
	return &Editor{
		session: session,
		list:    list,
		writer:  writer,
		scraper: scraper,
		form:    NewForm(),
	}
}

// Form returns the current form.
func (e *Editor) Form() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// CanEdit reports whether the session may change this list right now.
func (e *Editor) CanEdit() bool {
	return auth.CanEdit(e.session.Identity(), e.list.Owner())
}

func (e *Editor) SetName(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form.Name = name
}

func (e *Editor) SetURL(url string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form.URL = url
}

// SetQuantity sets the quantity and recomputes the total. Zero and negative
// quantities are accepted as typed.
func (e *Editor) SetQuantity(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form.Quantity = n
	e.form.Total = money.Multiply(e.form.UnitPrice, n).String()
}

// SetUnitPrice sets the unit price text and recomputes the total. Text that
// is not a number counts as 0,00€.
func (e *Editor) SetUnitPrice(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form.UnitPrice = text
	e.form.Total = money.Multiply(text, e.form.Quantity).String()
}

// AddItem stores the form as a new item and clears the form. It does
// nothing when the session may not edit the list. On a backend error the
// form is kept.
func (e *Editor) AddItem(ctx context.Context) error {
	if !e.CanEdit() {
		return nil
	}

	f := e.Form()
	ownerID := e.list.OwnerID()
	item := models.NewItem(ownerID, f.Name, f.Quantity, f.URL, f.Total)

	if _, err := e.writer.AddItem(ctx, ownerID, item); err != nil {
		slog.Error("Adding item failed", "owner_id", ownerID, "error", err)
		return fmt.Errorf("add item: %w", err)
	}

	e.mu.Lock()
	e.form = NewForm()
	e.mu.Unlock()
	return nil
}

// RemoveItem deletes an item. It does nothing when the session may not edit
// the list.
func (e *Editor) RemoveItem(ctx context.Context, itemID string) error {
	if !e.CanEdit() {
		return nil
	}

	if err := e.writer.RemoveItem(ctx, e.list.OwnerID(), itemID); err != nil {
		slog.Error("Removing item failed", "owner_id", e.list.OwnerID(), "item_id", itemID, "error", err)
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

// GrandTotal is the total of the list, not of the form.
func (e *Editor) GrandTotal() money.Money {
	return e.list.GrandTotal()
}

// FetchExternal fills the form from a product page: name, unit price (the
// total follows the current quantity) and url. Fields the page lacks become
// empty. Failures are logged and leave the form untouched.
func (e *Editor) FetchExternal(ctx context.Context, url string) {
	product, err := e.scraper.Fetch(ctx, url)
	if err != nil {
		slog.Error("Error fetching data", "url", url, "error", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.form.Name = product.Name
	e.form.UnitPrice = product.Price
	e.form.Total = money.Multiply(product.Price, e.form.Quantity).String()
	e.form.URL = url
}
