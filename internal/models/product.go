package models

type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name" validate:"required,max=200"`
	Price       float64 `json:"price" validate:"min=0"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock" validate:"min=0"`
}

type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
}
