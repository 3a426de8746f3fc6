package model

// User is one raw user record as returned by the order API.
type User struct {
	ID        interface{} `json:"id"`
	FirstName *string     `json:"firstName"`
	LastName  *string     `json:"lastName"`
	Email     *string     `json:"email"`
	Address   *Address    `json:"address"`
	Age       interface{} `json:"age"`
	Gender    *string     `json:"gender"`
}

// Address carries the subset of the user address we extract.
type Address struct {
	City *string `json:"city"`
}
