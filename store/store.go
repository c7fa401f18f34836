package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrNoChange reports a conditional update whose precondition no longer held.
	ErrNoChange = errors.New("no change")
)

// ParseID decodes a hex identifier; malformed ids are reported as ErrNotFound.
func ParseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, ErrNotFound
	}
	return oid, nil
}

// Canonical returns id in the lowercase hex form used in followers,
// following, likes and userId. Malformed ids are returned unchanged.
func Canonical(id string) string {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return id
	}
	return oid.Hex()
}
