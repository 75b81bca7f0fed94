package models

type CartItem struct {
	ID        int     `json:"id"`
	ProductID int     `json:"productId"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

type CreateCartItemRequest struct {
	ProductID int     `json:"productId" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gte=1"`
	Product   Product `json:"product" validate:"-"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}
