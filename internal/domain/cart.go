package domain

import "github.com/shopspring/decimal"

// MaxLineQuantity caps a single cart or order line. It matches the order
// line limit so any cart can be turned into an order.
const MaxLineQuantity = 99

// CartLine is one distinct product in the cart.
type CartLine struct {
	ID       ID              `json:"id,omitempty"`
	StoreID  ID              `json:"_id,omitempty"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity"`
}

func (l CartLine) Identity() (ID, bool) {
	return IdentityOf(l.ID, l.StoreID)
}

// LineTotal is price × quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartLineFromMenuItem builds a fresh line with quantity 1. An undefined
// price is treated as zero.
func CartLineFromMenuItem(item MenuItem) CartLine {
	price := decimal.Zero
	if item.Price.Valid {
		price = item.Price.Decimal
	}
	return CartLine{
		ID:       item.ID,
		StoreID:  item.StoreID,
		Name:     item.Name,
		Price:    price,
		Image:    item.ImageURL(),
		Quantity: 1,
	}
}
