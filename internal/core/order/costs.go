package order

import "github.com/shopspring/decimal"

// PartLine is a priced spare-part consumption line.
type PartLine struct {
	SparePartID int64
	Quantity    int
	UnitCost    decimal.Decimal
}

// Total returns quantity × unit cost.
func (l PartLine) Total() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PartsTotal sums the totals of all lines.
func PartsTotal(lines []PartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// ActualCost rolls labor, material and spare-part costs into the order's
// actual cost.
func ActualCost(labor, material decimal.Decimal, lines []PartLine) decimal.Decimal {
	return labor.Add(material).Add(PartsTotal(lines))
}
