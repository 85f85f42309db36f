package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// AuthServiceHandler is implemented by the server side of AuthService.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	Logout(context.Context, *connect.Request[LogoutRequest]) (*connect.Response[LogoutResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
}

// ListServiceHandler is implemented by the server side of ListService.
type ListServiceHandler interface {
	GetOwner(context.Context, *connect.Request[GetOwnerRequest]) (*connect.Response[GetOwnerResponse], error)
	WatchOwners(context.Context, *connect.Request[WatchOwnersRequest], *connect.ServerStream[OwnersSnapshot]) error
	WatchItems(context.Context, *connect.Request[WatchItemsRequest], *connect.ServerStream[ItemsSnapshot]) error
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[AddItemResponse], error)
	RemoveItem(context.Context, *connect.Request[RemoveItemRequest]) (*connect.Response[RemoveItemResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithCodec()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(RegisterProcedure, connect.NewUnaryHandler(RegisterProcedure, svc.Register, opts...))
	mux.Handle(LoginProcedure, connect.NewUnaryHandler(LoginProcedure, svc.Login, opts...))
	mux.Handle(LogoutProcedure, connect.NewUnaryHandler(LogoutProcedure, svc.Logout, opts...))
	mux.Handle(GetCurrentUserProcedure, connect.NewUnaryHandler(GetCurrentUserProcedure, svc.GetCurrentUser, opts...))
	return "/" + AuthServiceName + "/", mux
}

// NewListServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewListServiceHandler(svc ListServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithCodec()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(GetOwnerProcedure, connect.NewUnaryHandler(GetOwnerProcedure, svc.GetOwner, opts...))
	mux.Handle(WatchOwnersProcedure, connect.NewServerStreamHandler(WatchOwnersProcedure, svc.WatchOwners, opts...))
	mux.Handle(WatchItemsProcedure, connect.NewServerStreamHandler(WatchItemsProcedure, svc.WatchItems, opts...))
	mux.Handle(AddItemProcedure, connect.NewUnaryHandler(AddItemProcedure, svc.AddItem, opts...))
	mux.Handle(RemoveItemProcedure, connect.NewUnaryHandler(RemoveItemProcedure, svc.RemoveItem, opts...))
	return "/" + ListServiceName + "/", mux
}

// AuthServiceClient is a client for AuthService.
type AuthServiceClient struct {
	register       *connect.Client[RegisterRequest, RegisterResponse]
	login          *connect.Client[LoginRequest, LoginResponse]
	logout         *connect.Client[LogoutRequest, LogoutResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
}

// NewAuthServiceClient constructs a client for the AuthService served at
// baseURL (for example, http://localhost:8080).
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	opts = append([]connect.ClientOption{WithCodec()}, opts...)
	return &AuthServiceClient{
		register:       connect.NewClient[RegisterRequest, RegisterResponse](httpClient, baseURL+RegisterProcedure, opts...),
		login:          connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+LoginProcedure, opts...),
		logout:         connect.NewClient[LogoutRequest, LogoutResponse](httpClient, baseURL+LogoutProcedure, opts...),
		getCurrentUser: connect.NewClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL+GetCurrentUserProcedure, opts...),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Logout(ctx context.Context, req *connect.Request[LogoutRequest]) (*connect.Response[LogoutResponse], error) {
	return c.logout.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

// ListServiceClient is a client for ListService.
type ListServiceClient struct {
	getOwner    *connect.Client[GetOwnerRequest, GetOwnerResponse]
	watchOwners *connect.Client[WatchOwnersRequest, OwnersSnapshot]
	watchItems  *connect.Client[WatchItemsRequest, ItemsSnapshot]
	addItem     *connect.Client[AddItemRequest, AddItemResponse]
	removeItem  *connect.Client[RemoveItemRequest, RemoveItemResponse]
}

// NewListServiceClient constructs a client for the ListService served at
// baseURL.
func NewListServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ListServiceClient {
	opts = append([]connect.ClientOption{WithCodec()}, opts...)
	return &ListServiceClient{
		getOwner:    connect.NewClient[GetOwnerRequest, GetOwnerResponse](httpClient, baseURL+GetOwnerProcedure, opts...),
		watchOwners: connect.NewClient[WatchOwnersRequest, OwnersSnapshot](httpClient, baseURL+WatchOwnersProcedure, opts...),
		watchItems:  connect.NewClient[WatchItemsRequest, ItemsSnapshot](httpClient, baseURL+WatchItemsProcedure, opts...),
		addItem:     connect.NewClient[AddItemRequest, AddItemResponse](httpClient, baseURL+AddItemProcedure, opts...),
		removeItem:  connect.NewClient[RemoveItemRequest, RemoveItemResponse](httpClient, baseURL+RemoveItemProcedure, opts...),
	}
}

func (c *ListServiceClient) GetOwner(ctx context.Context, req *connect.Request[GetOwnerRequest]) (*connect.Response[GetOwnerResponse], error) {
	return c.getOwner.CallUnary(ctx, req)
}

func (c *ListServiceClient) WatchOwners(ctx context.Context, req *connect.Request[WatchOwnersRequest]) (*connect.ServerStreamForClient[OwnersSnapshot], error) {
	return c.watchOwners.CallServerStream(ctx, req)
}

func (c *ListServiceClient) WatchItems(ctx context.Context, req *connect.Request[WatchItemsRequest]) (*connect.ServerStreamForClient[ItemsSnapshot], error) {
	return c.watchItems.CallServerStream(ctx, req)
}

func (c *ListServiceClient) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[AddItemResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

func (c *ListServiceClient) RemoveItem(ctx context.Context, req *connect.Request[RemoveItemRequest]) (*connect.Response[RemoveItemResponse], error) {
	return c.removeItem.CallUnary(ctx, req)
}
