package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidUpload    = errors.New("only image files are allowed")
	ErrUploadTooLarge   = errors.New("File size too large. Maximum size is 5MB")
	ErrUploadNotFound   = errors.New("upload not found")
)

var validate = validator.New()

func validateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed on %q", ErrInvalidInput, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
