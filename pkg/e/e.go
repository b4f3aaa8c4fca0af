package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrMissingEnvVariable   = fmt.Errorf("environment variable is required")

	// 400 Bad Request
	ErrStatusBadRequest      = fmt.Errorf("bad request")
	ErrExpectedMultipart     = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields         = fmt.Errorf("missing required fields")
	ErrInvalidPrice          = fmt.Errorf("invalid price")
	ErrPricePrecision        = fmt.Errorf("price must have at most 2 decimal places")
	ErrPriceMustBePositive   = fmt.Errorf("price must be positive")
	ErrProductNameRequired   = fmt.Errorf("product name is required")
	ErrCategoryNameRequired  = fmt.Errorf("category name is required")
	ErrNegativeStock         = fmt.Errorf("stock must not be negative")
	ErrNoImages              = fmt.Errorf("no images provided")
	ErrTooManyImages         = fmt.Errorf("too many images")
	ErrFileTooLarge          = fmt.Errorf("file too large")
	ErrUnsupportedMediaType  = fmt.Errorf("unsupported media type")
	ErrInvalidQuantity       = fmt.Errorf("quantity must be positive")
	ErrInvalidID             = fmt.Errorf("invalid identifier")
	ErrInvalidPaymentMethod  = fmt.Errorf("invalid payment method")
	ErrShippingAddressNeeded = fmt.Errorf("shipping address is required")
	ErrInvalidOrderStatus    = fmt.Errorf("invalid order status")
	ErrInvalidPromotion      = fmt.Errorf("invalid promotion")
	ErrInvalidDateRange      = fmt.Errorf("start date must not be after end date")
	ErrUsernameRequired      = fmt.Errorf("username is required")
	ErrInvalidEmail          = fmt.Errorf("invalid email")
	ErrTitleRequired         = fmt.Errorf("title is required")
	ErrTitleTooLong          = fmt.Errorf("title is too long")
	ErrInvalidImageURL       = fmt.Errorf("invalid image url")
	ErrSenderNameRequired    = fmt.Errorf("sender name is required")
	ErrSenderNameTooLong     = fmt.Errorf("sender name is too long")
	ErrMessageRequired       = fmt.Errorf("message is required")

	// 401 / 403
	ErrUnauthorized = fmt.Errorf("customer identity is required")
	ErrForbidden    = fmt.Errorf("forbidden")

	// 404 Not Found
	ErrProductNotFound   = fmt.Errorf("product not found")
	ErrCategoryNotFound  = fmt.Errorf("category not found")
	ErrCustomerNotFound  = fmt.Errorf("customer not found")
	ErrCartNotFound      = fmt.Errorf("active cart not found")
	ErrCartLineNotFound  = fmt.Errorf("cart item not found")
	ErrOrderNotFound     = fmt.Errorf("order not found")
	ErrPromotionNotFound = fmt.Errorf("promotion not found")
	ErrNewsNotFound      = fmt.Errorf("news not found")
	ErrMessageNotFound   = fmt.Errorf("contact message not found")
	ErrNoProducts        = fmt.Errorf("no products requested")

	// 409 Conflict
	ErrInsufficientStock = fmt.Errorf("insufficient stock")
	ErrEmptyCart         = fmt.Errorf("cart is empty")
	ErrAlreadyExists     = fmt.Errorf("already exists")
	ErrProductInUse      = fmt.Errorf("product is referenced by orders")
	ErrCustomerInUse     = fmt.Errorf("customer has orders")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
