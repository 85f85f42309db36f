package models

// Item is one entry on an owner's list (users/{ownerId}/items/{itemId}).
type Item struct {
	// ID is assigned by storage on append.
	ID string

	// OwnerID is the list the item belongs to.
	OwnerID string

	// Name is the display name, possibly empty.
	Name string

	// Amount is the quantity. It has no lower bound.
	Amount int

	// URL is the source page of the item, optionally empty.
	URL string

	// Price is the line total in stored text form, e.g. "7,50€".
	Price string
}

// NewItem builds an item for ownerID's list. The id is left for storage to
// assign.
func NewItem(ownerID, name string, amount int, url, price string) Item {
	return Item{
		OwnerID: ownerID,
		Name:    name,
		Amount:  amount,
		URL:     url,
		Price:   price,
	}
}
