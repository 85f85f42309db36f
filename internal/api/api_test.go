package api

import (
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/karkkilista/internal/models"
)

func TestValidate(t *testing.T) {
	t.Run("valid register", func(t *testing.T) {
		assert.NoError(t, Validate(&RegisterRequest{Email: "anna@example.com", Password: "salasana", Username: "Anna"}))
	})

	t.Run("bad email and missing username", func(t *testing.T) {
		err := Validate(&RegisterRequest{Email: "anna", Password: "salasana"})
		require.Error(t, err)
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
		assert.Contains(t, err.Error(), "email (email)")
		assert.Contains(t, err.Error(), "username (required)")
	})

	t.Run("remove needs item id", func(t *testing.T) {
		err := Validate(&RemoveItemRequest{OwnerID: "u1"})
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})
}

func TestCodec(t *testing.T) {
	c := Codec{}
	assert.Equal(t, "json", c.Name())

	b, err := c.Marshal(&AddItemRequest{OwnerID: "u1", Item: Item{Name: "Salmiakki", Amount: 2, Price: "5,00€"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner_id":"u1","item":{"name":"Salmiakki","amount":2,"url":"","price":"5,00€"}}`, string(b))

	var empty LogoutRequest
	assert.NoError(t, c.Unmarshal(nil, &empty))
}

func TestItemConversion(t *testing.T) {
	m := models.Item{ID: "i1", OwnerID: "u1", Name: "Salmiakki", Amount: 2, URL: "https://example.com", Price: "5,00€"}
	assert.Equal(t, m, ItemFromModel(m).ToModel("u1"))

	o := models.Owner{ID: "u1", Username: "Anna"}
	assert.Equal(t, o, OwnerFromModel(o).ToModel())
}
