package models

type Order struct {
	ID    int         `json:"id"`
	Date  string      `json:"date"`
	Items []OrderLine `json:"items"`
	Total float64     `json:"total"`
}

type OrderLine struct {
	ProductID int          `json:"productId"`
	Quantity  int          `json:"quantity"`
	Product   OrderProduct `json:"product"`
}

type OrderProduct struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type UploadResponse struct {
	ImageURL string `json:"imageUrl"`
}
