package models

// Item is a listed good. Immutable once created except for the one-time
// transition from unsold to sold (SoldTransactionID set exactly once).
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Title is the listing title.
	Title string

	// Price is the asking price in integer minor units (cents).
	Price int64

	// Currency is the lower-case ISO currency code the item is priced in.
	Currency string

	// SellerID is the user who listed the item. The user must own a
	// SellerProfile at listing time.
	SellerID string

	// SoldTransactionID is the settlement that bought this item, or empty
	// while the item is unsold. Set at most once; never cleared.
	SoldTransactionID string

	// CreatedAt is the Unix timestamp when the item was listed.
	CreatedAt int64
}

// Sold reports whether the item has been settled into a transaction.
func (i *Item) Sold() bool {
	return i.SoldTransactionID != ""
}
