package costwatch

import "github.com/xraph/costwatch/id"

// ID is the primary identifier type for Costwatch entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
