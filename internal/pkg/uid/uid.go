// Package uid generates identifiers.
//
// NumberID implementations return sortable int64 ids used as primary keys.
// StringID implementations return opaque strings used for correlation ids,
// token ids and event ids.
package uid

// NumberID generates numeric ids.
type NumberID interface {
	Generate() int64
}

// StringID generates string ids.
type StringID interface {
	Generate() string
}
