package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Address is an optional shipping address.
type Address struct {
	Street       string `json:"rua" yaml:"rua"`
	Number       string `json:"numero" yaml:"numero"`
	Complement   string `json:"complemento,omitempty" yaml:"complemento,omitempty"`
	Neighborhood string `json:"bairro" yaml:"bairro"`
	City         string `json:"cidade" yaml:"cidade"`
	State        string `json:"estado" yaml:"estado"`
	PostalCode   string `json:"cep" yaml:"cep"`
}

// IsZero reports whether no address field is set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// ContactInfo is what the customer types at checkout.
type ContactInfo struct {
	Name     string   `json:"cliente_nome" validate:"required"`
	WhatsApp string   `json:"cliente_whatsapp" validate:"required"`
	Email    string   `json:"cliente_email,omitempty" validate:"omitempty,contactemail"`
	Address  *Address `json:"endereco,omitempty"`
}

// Normalize trims surrounding whitespace and drops an empty address.
func (c ContactInfo) Normalize() ContactInfo {
	c.Name = strings.TrimSpace(c.Name)
	c.WhatsApp = strings.TrimSpace(c.WhatsApp)
	c.Email = strings.TrimSpace(c.Email)
	if c.Address != nil && c.Address.IsZero() {
		c.Address = nil
	}
	return c
}

// OrderItem is one line of an order as posted to /api/pedidos.
type OrderItem struct {
	ProductID int    `json:"produto_id"`
	Name      string `json:"nome"`
	Quantity  int    `json:"quantidade"`
	UnitPrice Price  `json:"preco"`
}

// OrderDraft is the body of POST /api/pedidos. It is never mutated after
// construction.
type OrderDraft struct {
	CustomerName     string      `json:"cliente_nome"`
	CustomerWhatsApp string      `json:"cliente_whatsapp"`
	CustomerEmail    string      `json:"cliente_email,omitempty"`
	Address          *Address    `json:"endereco,omitempty"`
	Items            []OrderItem `json:"itens"`
	Total            Price       `json:"valor_total"`
}

// NewOrderDraft snapshots cart and contact into a draft.
func NewOrderDraft(cart Cart, contact ContactInfo) OrderDraft {
	items := make([]OrderItem, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		items = append(items, OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	var addr *Address
	if contact.Address != nil {
		a := *contact.Address
		addr = &a
	}
	return OrderDraft{
		CustomerName:     contact.Name,
		CustomerWhatsApp: contact.WhatsApp,
		CustomerEmail:    contact.Email,
		Address:          addr,
		Items:            items,
		Total:            cart.Total(),
	}
}

// OrderStatus is the outcome of a submission.
type OrderStatus string

const (
	OrderRecorded       OrderStatus = "recorded"
	OrderPartialFailure OrderStatus = "partial_failure"
)

// OrderResult is returned to the caller after a submission has run all steps.
type OrderResult struct {
	Status     OrderStatus  `json:"status"`
	OrderID    string       `json:"order_id,omitempty"`
	Message    string       `json:"message"`
	HandoffURL string       `json:"handoff_url"`
	Draft      OrderDraft   `json:"draft"`
	Steps      []StepResult `json:"steps"`
	OrderError error        `json:"-"`
}

// Recorded reports whether the backend accepted the order.
func (r *OrderResult) Recorded() bool {
	return r.Status == OrderRecorded
}

// CreatedOrder is the backend's reply to POST /api/pedidos.
type CreatedOrder struct {
	ID      FlexibleID `json:"id"`
	Success bool       `json:"sucesso"`
}

// FlexibleID accepts numeric or string identifiers.
type FlexibleID string

// UnmarshalJSON accepts 12, "12" and null.
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*f = FlexibleID(n.String())
	return nil
}

// CustomerOrder is an entry of GET /api/cliente/pedidos.
type CustomerOrder struct {
	ID        FlexibleID     `json:"id"`
	CreatedAt time.Time      `json:"criado_em"`
	Status    string         `json:"status"`
	Total     Price          `json:"valor_total"`
	Items     OrderItemsList `json:"itens"`
}

// OrderItemsList decodes itens whether it arrives as an array or as a JSON
// document stored in a text column.
type OrderItemsList []OrderItem

// UnmarshalJSON implements the array-or-string decoding.
func (o *OrderItemsList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		if strings.TrimSpace(inner) == "" {
			*o = nil
			return nil
		}
		data = []byte(inner)
	}
	var items []OrderItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode order items: %w", err)
	}
	*o = items
	return nil
}
