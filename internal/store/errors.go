package store

import "github.com/roach88/redsql/internal/ir"

// ErrUnknownName is returned for a logical name outside the enumeration.
var ErrUnknownName = ir.ErrUnknownName
