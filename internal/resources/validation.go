package resources

import (
	"math"
	"strings"

	"linkeats/console/internal/model"
)

const (
	MsgRequiredFields = "Por favor, preencha todos os campos obrigatórios"
	MsgPricePositive  = "O preço deve ser maior que zero"
)

// ValidationError is raised before any request is sent.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func requireFields(values map[string]string, order ...string) *ValidationError {
	var missing []string
	for _, name := range order {
		if strings.TrimSpace(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Fields: missing, Message: MsgRequiredFields}
}

func ValidateCreateClient(dto model.CreateClientDTO) error {
	if verr := requireFields(map[string]string{
		"name":    dto.Name,
		"phone":   dto.Phone,
		"email":   dto.Email,
		"address": dto.Address,
	}, "name", "phone", "email", "address"); verr != nil {
		return verr
	}
	return nil
}

func ValidateUpdateClient(dto model.UpdateClientDTO) error {
	return rejectBlank(map[string]*string{
		"name":    dto.Name,
		"phone":   dto.Phone,
		"email":   dto.Email,
		"address": dto.Address,
	}, "name", "phone", "email", "address")
}

func ValidateCreateProduct(dto model.CreateProductDTO) error {
	if verr := requireFields(map[string]string{
		"name":     dto.Name,
		"category": dto.Category,
	}, "name", "category"); verr != nil {
		return verr
	}
	if !validPrice(dto.Price) {
		return &ValidationError{Fields: []string{"price"}, Message: MsgPricePositive}
	}
	return nil
}

func ValidateUpdateProduct(dto model.UpdateProductDTO) error {
	if err := rejectBlank(map[string]*string{
		"name":     dto.Name,
		"category": dto.Category,
	}, "name", "category"); err != nil {
		return err
	}
	if dto.Price != nil && !validPrice(*dto.Price) {
		return &ValidationError{Fields: []string{"price"}, Message: MsgPricePositive}
	}
	return nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

func ValidateCreateProfessional(dto model.CreateProfessionalDTO) error {
	if verr := requireFields(map[string]string{
		"name":     dto.Name,
		"email":    dto.Email,
		"password": dto.Password,
		"position": dto.Position,
	}, "name", "email", "password", "position"); verr != nil {
		return verr
	}
	return nil
}

func ValidateUpdateProfessional(dto model.UpdateProfessionalDTO) error {
	return rejectBlank(map[string]*string{
		"name":     dto.Name,
		"email":    dto.Email,
		"position": dto.Position,
	}, "name", "email", "position")
}

// rejectBlank fails when a required field is supplied but empty; omitted
// fields mean "unchanged".
func rejectBlank(values map[string]*string, order ...string) error {
	var blank []string
	for _, name := range order {
		if v := values[name]; v != nil && strings.TrimSpace(*v) == "" {
			blank = append(blank, name)
		}
	}
	if len(blank) == 0 {
		return nil
	}
	return &ValidationError{Fields: blank, Message: MsgRequiredFields}
}
