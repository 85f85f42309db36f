package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/karkkilista/internal/models"
	"github.com/mmynk/karkkilista/internal/money"
	"github.com/mmynk/karkkilista/internal/scrape"
)

type fakeSession struct{ identity *models.Identity }

func (s *fakeSession) Identity() *models.Identity { return s.identity }

type fakeList struct {
	owner *models.Owner
	total money.Money
}

func (l *fakeList) OwnerID() string         { return "anna" }
func (l *fakeList) Owner() *models.Owner    { return l.owner }
func (l *fakeList) GrandTotal() money.Money { return l.total }

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) AddItem(ctx context.Context, ownerID string, item models.Item) (*models.Item, error) {
	args := m.Called(ctx, ownerID, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockWriter) RemoveItem(ctx context.Context, ownerID, itemID string) error {
	args := m.Called(ctx, ownerID, itemID)
	return args.Error(0)
}

type MockScraper struct {
	mock.Mock
}

func (m *MockScraper) Fetch(ctx context.Context, url string) (scrape.Product, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(scrape.Product), args.Error(1)
}

var anna = &models.Owner{ID: "anna", Username: "Anna"}

func newOwnerEditor() (*Editor, *MockWriter, *MockScraper) {
	w := &MockWriter{}
	s := &MockScraper{}
	e := New(&fakeSession{identity: &models.Identity{ID: "anna"}}, &fakeList{owner: anna, total: money.FromCents(350)}, w, s)
	return e, w, s
}

func TestNewForm(t *testing.T) {
	assert.Equal(t, Form{Name: "", Quantity: 1, URL: "", UnitPrice: "", Total: "0,00€"}, NewForm())
}

func TestPricing(t *testing.T) {
	e, _, _ := newOwnerEditor()

	e.SetUnitPrice("2,50€")
	assert.Equal(t, "2,50€", e.Form().Total)

	e.SetQuantity(3)
	assert.Equal(t, "7,50€", e.Form().Total)

	e.SetUnitPrice("1,20")
	assert.Equal(t, "3,60€", e.Form().Total)

	e.SetUnitPrice("halpa")
	assert.Equal(t, "0,00€", e.Form().Total)
	assert.Equal(t, "halpa", e.Form().UnitPrice)

	e.SetUnitPrice("1e50000000")
	assert.Equal(t, "0,00€", e.Form().Total, "out of range counts as non-numeric")

	e.SetUnitPrice("2,00€")
	e.SetQuantity(0)
	assert.Equal(t, "0,00€", e.Form().Total)

	e.SetQuantity(-2)
	assert.Equal(t, "-4,00€", e.Form().Total)
}

func TestAddItem(t *testing.T) {
	e, w, _ := newOwnerEditor()
	ctx := context.Background()

	e.SetName("Salmiakki")
	e.SetURL("https://kauppa.example/s")
	e.SetQuantity(3)
	e.SetUnitPrice("2,50€")

	want := models.Item{OwnerID: "anna", Name: "Salmiakki", Amount: 3, URL: "https://kauppa.example/s", Price: "7,50€"}
	w.On("AddItem", ctx, "anna", want).Return(&models.Item{ID: "i1"}, nil).Once()

	require.NoError(t, e.AddItem(ctx))
	assert.Equal(t, NewForm(), e.Form())
	w.AssertExpectations(t)
}

func TestAddItem_BackendErrorKeepsForm(t *testing.T) {
	e, w, _ := newOwnerEditor()
	ctx := context.Background()

	e.SetName("Salmiakki")
	w.On("AddItem", ctx, "anna", mock.Anything).Return(nil, errors.New("offline")).Once()

	assert.Error(t, e.AddItem(ctx))
	assert.Equal(t, "Salmiakki", e.Form().Name)
}

func TestEditGate(t *testing.T) {
	tests := []struct {
		name     string
		identity *models.Identity
		owner    *models.Owner
	}{
		{"signed out", nil, anna},
		{"owner still loading", &models.Identity{ID: "anna"}, nil},
		{"someone else", &models.Identity{ID: "bertil"}, anna},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &MockWriter{}
			e := New(&fakeSession{identity: tt.identity}, &fakeList{owner: tt.owner}, w, &MockScraper{})
			e.SetName("Salmiakki")

			assert.False(t, e.CanEdit())
			assert.NoError(t, e.AddItem(context.Background()))
			assert.NoError(t, e.RemoveItem(context.Background(), "i1"))
			assert.Equal(t, "Salmiakki", e.Form().Name, "form untouched")
			w.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything)
			w.AssertNotCalled(t, "RemoveItem", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRemoveItem(t *testing.T) {
	e, w, _ := newOwnerEditor()
	ctx := context.Background()

	w.On("RemoveItem", ctx, "anna", "i1").Return(nil).Once()
	w.On("RemoveItem", ctx, "anna", "i2").Return(errors.New("not found")).Once()

	require.NoError(t, e.RemoveItem(ctx, "i1"))
	assert.Error(t, e.RemoveItem(ctx, "i2"))
	w.AssertExpectations(t)
}

func TestGrandTotal(t *testing.T) {
	e, _, _ := newOwnerEditor()
	assert.Equal(t, "3,50€", e.GrandTotal().String())
}

func TestFetchExternal(t *testing.T) {
	ctx := context.Background()

	t.Run("fills name, price and url", func(t *testing.T) {
		e, _, s := newOwnerEditor()
		e.SetQuantity(2)
		s.On("Fetch", ctx, "https://kauppa.example/s").
			Return(scrape.Product{Name: "Salmiakki", Price: "2,50€"}, nil)

		e.FetchExternal(ctx, "https://kauppa.example/s")

		assert.Equal(t, Form{
			Name:      "Salmiakki",
			Quantity:  2,
			URL:       "https://kauppa.example/s",
			UnitPrice: "2,50€",
			Total:     "5,00€",
		}, e.Form())
	})

	t.Run("missing markup gives empty fields", func(t *testing.T) {
		e, _, s := newOwnerEditor()
		e.SetName("vanha")
		s.On("Fetch", ctx, "https://kauppa.example/x").Return(scrape.Product{}, nil)

		e.FetchExternal(ctx, "https://kauppa.example/x")

		f := e.Form()
		assert.Empty(t, f.Name)
		assert.Empty(t, f.UnitPrice)
		assert.Equal(t, "0,00€", f.Total)
		assert.Equal(t, "https://kauppa.example/x", f.URL)
	})

	t.Run("failure leaves the form alone", func(t *testing.T) {
		e, _, s := newOwnerEditor()
		e.SetName("vanha")
		e.SetQuantity(4)
		before := e.Form()
		s.On("Fetch", ctx, "https://kauppa.example/down").Return(scrape.Product{}, errors.New("boom"))

		e.FetchExternal(ctx, "https://kauppa.example/down")

		assert.Equal(t, before, e.Form())
	})
}
