package domain

import "encoding/json"

// Nullable is an optional update to a nullable column.
// Set reports whether the column takes part in the update; a nil Value
// with Set == true clears the column.
//
// Decoded from JSON, an absent field leaves Set false and an explicit null
// clears the column.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// SetTo returns a Nullable that writes v.
func SetTo[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// SetNull returns a Nullable that clears the column.
func SetNull[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}
