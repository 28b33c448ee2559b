package screens

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"linkeats/console/internal/model"
	"linkeats/console/internal/resources"
)

type ClientForm struct {
	Name     string
	Phone    string
	Address  string
	Document string
	Email    string
}

func ClientFormFromValues(v url.Values) ClientForm {
	return ClientForm{
		Name:     strings.TrimSpace(v.Get("name")),
		Phone:    strings.TrimSpace(v.Get("phone")),
		Address:  strings.TrimSpace(v.Get("address")),
		Document: strings.TrimSpace(v.Get("document")),
		Email:    strings.TrimSpace(v.Get("email")),
	}
}

func (f ClientForm) CreateDTO() model.CreateClientDTO {
	dto := model.CreateClientDTO{
		Name:    f.Name,
		Phone:   f.Phone,
		Address: f.Address,
		Email:   f.Email,
	}
	if f.Document != "" {
		dto.Document = model.StringPtr(f.Document)
	}
	return dto
}

type ProductForm struct {
	Name     string
	Price    string
	Category string
	Notes    string
	Size     bool
}

func ProductFormFromValues(v url.Values) ProductForm {
	return ProductForm{
		Name:     strings.TrimSpace(v.Get("name")),
		Price:    strings.TrimSpace(v.Get("price")),
		Category: strings.TrimSpace(v.Get("category")),
		Notes:    strings.TrimSpace(v.Get("notes")),
		Size:     v.Get("size") == "on" || v.Get("size") == "true",
	}
}

var errNotFinite = errors.New("price is not a finite number")

// ParsePrice accepts both "12.50" and "12,50".
func ParsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "R$"))
	if strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

func (f ProductForm) price() (float64, error) {
	if f.Price == "" {
		return 0, &resources.ValidationError{Fields: []string{"price"}, Message: resources.MsgRequiredFields}
	}
	price, err := ParsePrice(f.Price)
	if err != nil {
		return 0, &resources.ValidationError{Fields: []string{"price"}, Message: resources.MsgPricePositive}
	}
	return price, nil
}

func (f ProductForm) CreateDTO() (model.CreateProductDTO, error) {
	dto := model.CreateProductDTO{
		Name:     f.Name,
		Category: f.Category,
		Size:     model.BoolPtr(f.Size),
	}
	if f.Notes != "" {
		dto.Notes = model.StringPtr(f.Notes)
	}
	if f.Name == "" || f.Category == "" || f.Price == "" {
		return dto, &resources.ValidationError{Fields: missing(map[string]string{
			"name": f.Name, "price": f.Price, "category": f.Category,
		}, "name", "price", "category"), Message: resources.MsgRequiredFields}
	}
	price, err := f.price()
	if err != nil {
		return dto, err
	}
	dto.Price = price
	return dto, nil
}

type ProfessionalForm struct {
	Name        string
	Email       string
	Password    string
	Position    string
	PhoneNumber string
}

func ProfessionalFormFromValues(v url.Values) ProfessionalForm {
	return ProfessionalForm{
		Name:        strings.TrimSpace(v.Get("name")),
		Email:       strings.TrimSpace(v.Get("email")),
		Password:    v.Get("password"),
		Position:    strings.TrimSpace(v.Get("position")),
		PhoneNumber: strings.TrimSpace(v.Get("phone_number")),
	}
}

func (f ProfessionalForm) CreateDTO() model.CreateProfessionalDTO {
	dto := model.CreateProfessionalDTO{
		Name:     f.Name,
		Email:    f.Email,
		Password: f.Password,
		Position: f.Position,
	}
	if f.PhoneNumber != "" {
		dto.PhoneNumber = model.StringPtr(f.PhoneNumber)
	}
	return dto
}

func missing(values map[string]string, order ...string) []string {
	var out []string
	for _, name := range order {
		if strings.TrimSpace(values[name]) == "" {
			out = append(out, name)
		}
	}
	return out
}
