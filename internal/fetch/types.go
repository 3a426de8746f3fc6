package fetch

import "github.com/ikkim/retail-etl/internal/app/model"

// CartsPayload is the top-level carts response. A payload missing the
// "carts" key decodes with a nil Carts slice, which downstream stages
// treat as missing input.
type CartsPayload struct {
	Carts []model.Cart `json:"carts"`
	Total int          `json:"total"`
	Skip  int          `json:"skip"`
	Limit int          `json:"limit"`
}

// UsersPayload is the top-level users response.
type UsersPayload struct {
	Users []model.User `json:"users"`
	Total int          `json:"total"`
	Skip  int          `json:"skip"`
	Limit int          `json:"limit"`
}
