package shopping

import (
	"maps"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// LineItem pairs a product with a positive quantity
type LineItem struct {
	Product         catalog.Product   `json:"product"`
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
}

// Subtotal returns price * quantity
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i LineItem) clone() LineItem {
	i.SelectedOptions = maps.Clone(i.SelectedOptions)
	return i
}

// Cart is an ordered ledger of line items, at most one per product id.
// Every operation returns a new Cart and leaves the receiver untouched,
// so a Cart held in an old state snapshot never changes.
type Cart struct {
	items []LineItem
}

// NewCart builds a cart from line items, merging duplicates and
// dropping non-positive quantities.
func NewCart(items ...LineItem) Cart {
	var c Cart
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i := c.indexOf(item.Product.ID); i >= 0 {
			c.items[i].Quantity += item.Quantity
			continue
		}
		c.items = append(c.items, item.clone())
	}
	return c
}

// Add increments the product's quantity by one, inserting a new line
// item with quantity 1 on first add.
func (c Cart) Add(product catalog.Product) Cart {
	next := c.copy()
	if i := next.indexOf(product.ID); i >= 0 {
		next.items[i].Quantity++
		return next
	}
	next.items = append(next.items, LineItem{Product: product, Quantity: 1})
	return next
}

// SetQuantity sets an absolute quantity. Zero or negative removes the
// line item. Unknown product ids leave the cart unchanged.
func (c Cart) SetQuantity(productID string, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(productID)
	}
	i := c.indexOf(productID)
	if i < 0 {
		return c
	}
	next := c.copy()
	next.items[i].Quantity = quantity
	return next
}

// Remove drops the product's line item if present
func (c Cart) Remove(productID string) Cart {
	i := c.indexOf(productID)
	if i < 0 {
		return c
	}
	next := Cart{items: make([]LineItem, 0, len(c.items)-1)}
	next.items = append(next.items, c.items[:i]...)
	next.items = append(next.items, c.items[i+1:]...)
	return next
}

// Clear returns an empty cart
func (c Cart) Clear() Cart {
	return Cart{}
}

// Items returns a copy of the line items in insertion order
func (c Cart) Items() []LineItem {
	result := make([]LineItem, len(c.items))
	for i, item := range c.items {
		result[i] = item.clone()
	}
	return result
}

// Item returns the line item for a product
func (c Cart) Item(productID string) (LineItem, bool) {
	i := c.indexOf(productID)
	if i < 0 {
		return LineItem{}, false
	}
	return c.items[i].clone(), true
}

// Len returns the number of distinct line items
func (c Cart) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the cart has no line items
func (c Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// ItemCount returns the sum of quantities
func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Total returns the sum of price * quantity over all line items
func (c Cart) Total() decimal.Decimal {
	return SumLineItems(c.items)
}

// StoreID returns the store of the first line item.
// A cart is checked out against a single store.
func (c Cart) StoreID() (string, bool) {
	if len(c.items) == 0 {
		return "", false
	}
	return c.items[0].Product.StoreID, true
}

// SumLineItems totals a set of line items
func SumLineItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c Cart) indexOf(productID string) int {
	for i, item := range c.items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) copy() Cart {
	items := make([]LineItem, len(c.items), len(c.items)+1)
	copy(items, c.items)
	return Cart{items: items}
}
