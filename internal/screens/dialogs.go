package screens

import (
	"strings"

	"linkeats/console/internal/model"
	"linkeats/console/internal/resources"
)

// Edit dialogs compare the submitted form with the loaded entity and send
// only what changed.

func requireAll(values map[string]string, order ...string) error {
	if fields := missing(values, order...); len(fields) > 0 {
		return &resources.ValidationError{Fields: fields, Message: resources.MsgRequiredFields}
	}
	return nil
}

func changed(current, next string) *string {
	if current == next {
		return nil
	}
	return model.StringPtr(next)
}

func ClientDiff(current model.Client, form ClientForm) (model.UpdateClientDTO, error) {
	if err := requireAll(map[string]string{
		"name": form.Name, "phone": form.Phone, "email": form.Email, "address": form.Address,
	}, "name", "phone", "email", "address"); err != nil {
		return model.UpdateClientDTO{}, err
	}
	dto := model.UpdateClientDTO{
		Name:    changed(current.Name, form.Name),
		Phone:   changed(current.Phone, form.Phone),
		Address: changed(current.Address, form.Address),
		Email:   changed(current.Email, form.Email),
	}
	if form.Document != "" {
		var doc string
		if current.Document != nil {
			doc = *current.Document
		}
		dto.Document = changed(doc, form.Document)
	}
	return dto, nil
}

func ProductDiff(current model.Product, form ProductForm) (model.UpdateProductDTO, error) {
	if err := requireAll(map[string]string{
		"name": form.Name, "price": form.Price, "category": form.Category,
	}, "name", "price", "category"); err != nil {
		return model.UpdateProductDTO{}, err
	}
	price, err := form.price()
	if err != nil {
		return model.UpdateProductDTO{}, err
	}
	if price <= 0 {
		return model.UpdateProductDTO{}, &resources.ValidationError{Fields: []string{"price"}, Message: resources.MsgPricePositive}
	}

	dto := model.UpdateProductDTO{
		Name:     changed(current.Name, form.Name),
		Category: changed(current.Category, form.Category),
	}
	if price != current.Price {
		dto.Price = model.Float64Ptr(price)
	}
	var notes string
	if current.Notes != nil {
		notes = *current.Notes
	}
	dto.Notes = changed(notes, form.Notes)
	if form.Size != current.Size {
		dto.Size = model.BoolPtr(form.Size)
	}
	return dto, nil
}

// ProfessionalDiff never carries a blank password.
func ProfessionalDiff(current model.Professional, form ProfessionalForm) (model.UpdateProfessionalDTO, error) {
	if err := requireAll(map[string]string{
		"name": form.Name, "email": form.Email, "position": form.Position,
	}, "name", "email", "position"); err != nil {
		return model.UpdateProfessionalDTO{}, err
	}
	dto := model.UpdateProfessionalDTO{
		Name:        changed(current.Name, form.Name),
		Email:       changed(current.Email, form.Email),
		Position:    changed(current.Position, form.Position),
		PhoneNumber: changed(current.PhoneNumber, form.PhoneNumber),
	}
	if strings.TrimSpace(form.Password) != "" {
		dto.Password = model.StringPtr(form.Password)
	}
	return dto, nil
}

func EmptyClientUpdate(dto model.UpdateClientDTO) bool {
	return dto.Name == nil && dto.Phone == nil && dto.Address == nil && dto.Document == nil && dto.Email == nil
}

func EmptyProductUpdate(dto model.UpdateProductDTO) bool {
	return dto.Name == nil && dto.Price == nil && dto.Category == nil && dto.Notes == nil && dto.Size == nil
}

func EmptyProfessionalUpdate(dto model.UpdateProfessionalDTO) bool {
	return dto.Name == nil && dto.Email == nil && dto.Password == nil && dto.Position == nil && dto.PhoneNumber == nil
}
