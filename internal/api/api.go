// Package api is the wire contract between the Karkkilista server and its
// clients.
//
// Services are served with connect. Messages are plain Go structs carried by
// a JSON codec (see Codec), so the same types are used on both ends without
// generated code.
package api

import "github.com/mmynk/karkkilista/internal/models"

// Service and procedure names.
const (
	AuthServiceName = "karkkilista.v1.AuthService"
	ListServiceName = "karkkilista.v1.ListService"

	RegisterProcedure       = "/" + AuthServiceName + "/Register"
	LoginProcedure          = "/" + AuthServiceName + "/Login"
	LogoutProcedure         = "/" + AuthServiceName + "/Logout"
	GetCurrentUserProcedure = "/" + AuthServiceName + "/GetCurrentUser"

	GetOwnerProcedure    = "/" + ListServiceName + "/GetOwner"
	WatchOwnersProcedure = "/" + ListServiceName + "/WatchOwners"
	WatchItemsProcedure  = "/" + ListServiceName + "/WatchItems"
	AddItemProcedure     = "/" + ListServiceName + "/AddItem"
	RemoveItemProcedure  = "/" + ListServiceName + "/RemoveItem"
)

// User is the signed-in account as seen by its owner.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}

// Owner is a public list owner profile.
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Item is one list entry.
type Item struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Amount int    `json:"amount"`
	URL    string `json:"url"`
	Price  string `json:"price"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Username string `json:"username" validate:"required,max=64"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

type GetOwnerRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
}

type GetOwnerResponse struct {
	Owner Owner `json:"owner"`
}

type WatchOwnersRequest struct{}

// OwnersSnapshot is one full copy of the owner directory.
type OwnersSnapshot struct {
	Owners []Owner `json:"owners"`
}

type WatchItemsRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
}

// ItemsSnapshot is one full copy of an owner's items, in delivery order.
type ItemsSnapshot struct {
	Items []Item `json:"items"`
}

type AddItemRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
	Item    Item   `json:"item"`
}

type AddItemResponse struct {
	Item Item `json:"item"`
}

type RemoveItemRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
	ItemID  string `json:"item_id" validate:"required"`
}

type RemoveItemResponse struct{}

// OwnerFromModel converts a stored owner profile.
func OwnerFromModel(o models.Owner) Owner {
	return Owner{ID: o.ID, Username: o.Username}
}

// ToModel converts back to the domain type.
func (o Owner) ToModel() models.Owner {
	return models.Owner{ID: o.ID, Username: o.Username}
}

// ItemFromModel converts a stored item.
func ItemFromModel(i models.Item) Item {
	return Item{ID: i.ID, Name: i.Name, Amount: i.Amount, URL: i.URL, Price: i.Price}
}

// ToModel converts back to the domain type for the given owner.
func (i Item) ToModel(ownerID string) models.Item {
	return models.Item{ID: i.ID, OwnerID: ownerID, Name: i.Name, Amount: i.Amount, URL: i.URL, Price: i.Price}
}
