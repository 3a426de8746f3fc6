package model

// Cart is one raw cart record as returned by the order API. Scalar
// fields that still need type coercion downstream keep their raw
// JSON-decoded values; absent fields decode to nil.
type Cart struct {
	ID              interface{}   `json:"id"`
	UserID          interface{}   `json:"userId"`
	Total           interface{}   `json:"total"`
	DiscountedTotal interface{}   `json:"discountedTotal"`
	TotalProducts   interface{}   `json:"totalProducts"`
	TotalQuantity   interface{}   `json:"totalQuantity"`
	Products        []CartProduct `json:"products"`
}

// CartProduct is one product line embedded in a cart.
type CartProduct struct {
	ID       interface{} `json:"id"`
	Title    *string     `json:"title"`
	Price    interface{} `json:"price"`
	Quantity interface{} `json:"quantity"`
	Total    interface{} `json:"total"`
}
