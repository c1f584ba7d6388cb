package models

import "time"

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Cost        float64   `json:"cost"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func ProductFromRow(r Row) Product {
	return Product{
		ID:          r.String("id"),
		Name:        r.String("name"),
		Quantity:    r.Int("quantity"),
		Category:    r.String("category"),
		Price:       r.Float("price"),
		Cost:        r.Float("cost"),
		Description: r.String("description"),
		CreatedAt:   r.Time("created_at"),
	}
}

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func CustomerFromRow(r Row) Customer {
	return Customer{
		ID:        r.String("id"),
		Name:      r.String("name"),
		Email:     r.String("email"),
		Phone:     r.String("phone"),
		Address:   r.String("address"),
		CreatedAt: r.Time("created_at"),
	}
}

// Receipt is a completed sale. Receipts reference customers by name only.
type Receipt struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	Total        float64   `json:"total"`
	CreatedAt    time.Time `json:"created_at"`
	Items        []any     `json:"receipt_items,omitempty"`
}

func ReceiptFromRow(r Row) Receipt {
	rec := Receipt{
		ID:           r.String("id"),
		CustomerName: r.String("customer_name"),
		Total:        r.Float("total"),
		CreatedAt:    r.Time("created_at"),
	}
	if items, ok := r["receipt_items"].([]any); ok {
		rec.Items = items
	}
	return rec
}

type Order struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	StaffName    string    `json:"staff_name,omitempty"`
	Status       string    `json:"status,omitempty"`
	Total        float64   `json:"total"`
	CreatedAt    time.Time `json:"created_at"`
}

func OrderFromRow(r Row) Order {
	return Order{
		ID:           r.String("id"),
		CustomerName: r.String("customer_name"),
		StaffName:    r.String("staff_name"),
		Status:       r.String("status"),
		Total:        r.Float("total"),
		CreatedAt:    r.Time("created_at"),
	}
}

type Staff struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func StaffFromRow(r Row) Staff {
	return Staff{
		ID:    r.String("id"),
		Name:  r.String("name"),
		Email: r.String("email"),
		Role:  r.String("role"),
	}
}

func ProductsFromRows(rows []Row) []Product {
	out := make([]Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProductFromRow(r))
	}
	return out
}

func CustomersFromRows(rows []Row) []Customer {
	out := make([]Customer, 0, len(rows))
	for _, r := range rows {
		out = append(out, CustomerFromRow(r))
	}
	return out
}

func ReceiptsFromRows(rows []Row) []Receipt {
	out := make([]Receipt, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReceiptFromRow(r))
	}
	return out
}

func OrdersFromRows(rows []Row) []Order {
	out := make([]Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, OrderFromRow(r))
	}
	return out
}
