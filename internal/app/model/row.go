package model

// FlatRow is one (cart, product) pair joined with the owning customer's
// fields. It is the flatten-stage output and round-trips through the
// stage artifact with nulls intact: raw scalars stay interface{} until
// the normalizer coerces them, customer fields are nil when no user
// matched the cart.
type FlatRow struct {
	CartID              interface{} `json:"cart_id"`
	UserID              interface{} `json:"user_id"`
	CartTotal           interface{} `json:"cart_total"`
	CartDiscountedTotal interface{} `json:"cart_discounted_total"`
	CartTotalProducts   interface{} `json:"cart_total_products"`
	CartTotalQuantity   interface{} `json:"cart_total_quantity"`
	ProductID           interface{} `json:"product_id"`
	ProductTitle        *string     `json:"product_title"`
	ProductPrice        interface{} `json:"product_price"`
	ProductQuantity     interface{} `json:"product_quantity"`
	ProductTotal        interface{} `json:"product_total"`
	FirstName           *string     `json:"first_name"`
	LastName            *string     `json:"last_name"`
	CustomerName        *string     `json:"customer_name"`
	Email               *string     `json:"email"`
	City                *string     `json:"city"`
	Age                 interface{} `json:"age"`
	Gender              *string     `json:"gender"`
	OrderDate           string      `json:"order_date"`
}

// NormalizedRow is a FlatRow after type coercion, imputation and
// derived-total computation. The gorm-tagged columns form the sink
// schema of the transformed_data table; the imputed name/age/gender
// fields travel in the stage artifact only.
type NormalizedRow struct {
	CartID          int64    `gorm:"column:cart_id;primaryKey;autoIncrement:false" json:"cart_id"`
	UserID          *int64   `gorm:"column:user_id;index" json:"user_id"`
	ProductID       int64    `gorm:"column:product_id;primaryKey;autoIncrement:false" json:"product_id"`
	ProductTitle    string   `gorm:"column:product_title;type:text" json:"product_title"`
	ProductPrice    *float64 `gorm:"column:product_price" json:"product_price"`
	ProductQuantity *int64   `gorm:"column:product_quantity" json:"product_quantity"`
	ProductTotal    *float64 `gorm:"column:product_total" json:"product_total"`
	TotalAmount     float64  `gorm:"column:total_amount" json:"total_amount"`
	CustomerName    string   `gorm:"column:customer_name;type:text" json:"customer_name"`
	Email           string   `gorm:"column:email;type:text" json:"email"`
	City            string   `gorm:"column:city;type:text" json:"city"`
	OrderDate       string   `gorm:"column:order_date;type:date" json:"order_date"`

	FirstName string `gorm:"-" json:"first_name"`
	LastName  string `gorm:"-" json:"last_name"`
	Age       string `gorm:"-" json:"age"`
	Gender    string `gorm:"-" json:"gender"`
}

func (NormalizedRow) TableName() string {
	return "transformed_data"
}
