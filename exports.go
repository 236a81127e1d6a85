package costwatch

import "github.com/xraph/costwatch/types"

// Re-export common types for convenience so users don't have to import types package.

// Cost is re-exported from types package.
type Cost = types.Cost

// Date is re-exported from types package.
type Date = types.Date

// YearMonth is re-exported from types package.
type YearMonth = types.YearMonth

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Cost constructors
var (
	ZeroCost  = types.ZeroCost
	NewCost   = types.NewCost
	ParseCost = types.ParseCost
	MustCost  = types.MustCost
	SumCosts  = types.SumCosts
)

// Re-export Date constructors
var (
	NewDate   = types.NewDate
	ParseDate = types.ParseDate
	MustDate  = types.MustDate
	Today     = types.Today
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
