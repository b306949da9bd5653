package entity

// Supplier proveedor de productos. Solo informativo.
type Supplier struct {
	ID           int64
	CompanyName  string
	ContactName  string
	Phone        string
	Email        string
	LeadTimeDays int
}
