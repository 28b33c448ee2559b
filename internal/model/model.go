package model

import "strconv"

type User struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	Document  *string `json:"document,omitempty"`
	CompanyID int64   `json:"company_id"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// TenantID is the company header value for requests made on behalf of u.
func (u User) TenantID() string {
	if u.CompanyID <= 0 {
		return ""
	}
	return strconv.FormatInt(u.CompanyID, 10)
}

type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Client struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	Document  *string `json:"document,omitempty"`
	Email     string  `json:"email"`
	CompanyID int64   `json:"company_id"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type CreateClientDTO struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Address  string  `json:"address"`
	Document *string `json:"document,omitempty"`
	Email    string  `json:"email"`
}

type UpdateClientDTO struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	Document *string `json:"document,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type ProductPhoto struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type Product struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Price     float64        `json:"price"`
	Category  string         `json:"category"`
	Notes     *string        `json:"notes,omitempty"`
	Size      bool           `json:"size"`
	CompanyID int64          `json:"company_id"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
	Photos    []ProductPhoto `json:"photos,omitempty"`
}

type CreateProductDTO struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Notes    *string `json:"notes,omitempty"`
	Size     *bool   `json:"size,omitempty"`
}

type UpdateProductDTO struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Category *string  `json:"category,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
	Size     *bool    `json:"size,omitempty"`
}

type Professional struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Position    string `json:"position"`
	PhoneNumber string `json:"phone_number"`
	CompanyID   int64  `json:"company_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type CreateProfessionalDTO struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Position    string  `json:"position"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

type UpdateProfessionalDTO struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Password    *string `json:"password,omitempty"`
	Position    *string `json:"position,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// StringPtr returns a pointer to a copy of v.
func StringPtr(v string) *string { return &v }

// Float64Ptr returns a pointer to a copy of v.
func Float64Ptr(v float64) *float64 { return &v }

// BoolPtr returns a pointer to a copy of v.
func BoolPtr(v bool) *bool { return &v }
