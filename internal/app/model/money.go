package model

import "github.com/shopspring/decimal"

// IsWholeCents reports whether v has no digits past the cent.
func IsWholeCents(v float64) bool {
	return decimal.NewFromFloat(v).Exponent() >= -2
}

// LinePrice is the captured price of quantity units at unitPrice.
func LinePrice(unitPrice float64, quantity int) float64 {
	return decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		InexactFloat64()
}

// SumItems totals the captured prices of cart lines.
func (c *Cart) SumItems() float64 {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(decimal.NewFromFloat(item.Price))
	}
	return total.Round(2).InexactFloat64()
}

// SumOrderItems totals the captured prices of order lines.
func SumOrderItems(items []OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Price))
	}
	return total.Round(2).InexactFloat64()
}
