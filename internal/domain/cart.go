package domain

import "encoding/json"

// CartLine is one product in the remote cart.
type CartLine struct {
	ProductID int    `json:"produto_id"`
	Name      string `json:"nome"`
	UnitPrice Price  `json:"preco"`
	Quantity  int    `json:"quantidade"`
	ImageRef  string `json:"imagem,omitempty"`
}

// UnmarshalJSON reads produto_id, falling back to id for backends that
// return the joined product row.
func (l *CartLine) UnmarshalJSON(data []byte) error {
	type plain CartLine
	var wire struct {
		plain
		ID int `json:"id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*l = CartLine(wire.plain)
	if l.ProductID == 0 {
		l.ProductID = wire.ID
	}
	return nil
}

// Subtotal is UnitPrice × Quantity.
func (l CartLine) Subtotal() Price {
	return l.UnitPrice.Times(l.Quantity)
}

// Cart is the ordered list of lines the backend holds for a session. It is
// only ever replaced wholesale by a fresh fetch.
type Cart struct {
	Lines []CartLine `json:"itens"`
}

// EmptyCart returns a cart with no lines.
func EmptyCart() Cart {
	return Cart{Lines: []CartLine{}}
}

// Total is the exact sum of every line subtotal.
func (c Cart) Total() Price {
	total := Price{}
	for _, l := range c.Lines {
		total = total.Plus(l.Subtotal())
	}
	return total
}

// ItemCount is the sum of line quantities.
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns the line for productID.
func (c Cart) Line(productID int) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}
