package models

// DefaultCategories are created for every new account.
var DefaultCategories = []string{
	"Groceries",
	"Rent",
	"Transportation",
	"Entertainment",
	"Utilities",
	"Healthcare",
	"Food & Dining",
	"Shopping",
}

// Category is a named bucket owned by exactly one user.
// Names are unique per user.
type Category struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt int64
}
