package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestAccountJSONOmitsPassword(t *testing.T) {
	acc := Account{ID: bson.NewObjectID(), Username: "alice", Password: "$2a$10$hash"}
	acc.Normalize()

	raw, err := json.Marshal(acc)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "password")
	assert.Equal(t, acc.ID.Hex(), fields["_id"])
	assert.Equal(t, []any{}, fields["followers"])
}

func TestAccountPatchOnlyTouchesSetFields(t *testing.T) {
	about := "hello"
	patch := AccountPatch{About: &about}

	acc := Account{Username: "alice", Firstname: "Alice"}
	patch.Apply(&acc)

	assert.Equal(t, "hello", acc.About)
	assert.Equal(t, "Alice", acc.Firstname)
	assert.Equal(t, bson.M{"about": "hello"}, patch.Fields())
}

func TestParseID(t *testing.T) {
	oid := bson.NewObjectID()
	got, err := ParseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = ParseID("not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)
}
