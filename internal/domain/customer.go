package domain

import "time"

// Customer описывает покупателя. Учётные данные хранит внешний сервис аутентификации.
type Customer struct {
	ID        int64
	Username  string
	FullName  string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
}

func NewCustomer(username, fullName, email, phone, address string) *Customer {
	return &Customer{
		Username: username,
		FullName: fullName,
		Email:    email,
		Phone:    phone,
		Address:  address,
	}
}

// DisplayName возвращает полное имя, а если его нет — логин.
func (c *Customer) DisplayName() string {
	if c.FullName != "" {
		return c.FullName
	}
	return c.Username
}
