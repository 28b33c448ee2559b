package resources

import (
	"context"
	"net/http"
	"strings"

	"linkeats/console/internal/api"
	"linkeats/console/internal/model"
)

// AllCategories is the catalogue filter that selects every category.
const AllCategories = "Todos"

type ClientFilter struct {
	Term string
}

type ProductFilter struct {
	Term     string
	Category string
}

type ProfessionalFilter struct {
	Term string
}

type Clients struct {
	col collection[model.Client, model.CreateClientDTO, model.UpdateClientDTO]
}

func NewClients(doer Doer) *Clients {
	return &Clients{col: collection[model.Client, model.CreateClientDTO, model.UpdateClientDTO]{
		api: doer, path: "/clients", envelope: "client", label: "client",
	}}
}

func (c *Clients) List(ctx context.Context, filter ClientFilter) ([]model.Client, error) {
	return c.col.list(ctx, termQuery(filter.Term))
}

func (c *Clients) Get(ctx context.Context, id int64) (model.Client, error) {
	return c.col.get(ctx, c.col.itemPath(id))
}

func (c *Clients) GetByDocument(ctx context.Context, document string) (model.Client, error) {
	segment, err := api.PathEscape(document)
	if err != nil {
		return model.Client{}, &ValidationError{Fields: []string{"document"}, Message: MsgRequiredFields}
	}
	return c.col.get(ctx, c.col.path+"/document/"+segment)
}

func (c *Clients) GetByPhone(ctx context.Context, phone string) (model.Client, error) {
	segment, err := api.PathEscape(phone)
	if err != nil {
		return model.Client{}, &ValidationError{Fields: []string{"phone"}, Message: MsgRequiredFields}
	}
	return c.col.get(ctx, c.col.path+"/phone/"+segment)
}

func (c *Clients) Create(ctx context.Context, dto model.CreateClientDTO) (model.Client, error) {
	if err := ValidateCreateClient(dto); err != nil {
		return model.Client{}, err
	}
	return c.col.create(ctx, dto)
}

func (c *Clients) Update(ctx context.Context, id int64, dto model.UpdateClientDTO) (model.Client, error) {
	if err := ValidateUpdateClient(dto); err != nil {
		return model.Client{}, err
	}
	return c.col.update(ctx, id, dto)
}

func (c *Clients) Delete(ctx context.Context, id int64) error {
	return c.col.delete(ctx, id)
}

type Products struct {
	col collection[model.Product, model.CreateProductDTO, model.UpdateProductDTO]
}

func NewProducts(doer Doer) *Products {
	return &Products{col: collection[model.Product, model.CreateProductDTO, model.UpdateProductDTO]{
		api: doer, path: "/products", envelope: "product", label: "product",
	}}
}

func (p *Products) List(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	query := termQuery(filter.Term)
	if category := strings.TrimSpace(filter.Category); category != "" && category != AllCategories {
		query.Set("category", category)
	}
	return p.col.list(ctx, query)
}

// Categories lists the distinct product categories of the tenant.
func (p *Products) Categories(ctx context.Context) ([]string, error) {
	req, err := p.col.request(ctx, "categories", http.MethodGet, p.col.path+"/categories")
	if err != nil {
		return nil, err
	}
	var out []string
	if err := p.col.api.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (p *Products) Get(ctx context.Context, id int64) (model.Product, error) {
	return p.col.get(ctx, p.col.itemPath(id))
}

func (p *Products) Create(ctx context.Context, dto model.CreateProductDTO) (model.Product, error) {
	if err := ValidateCreateProduct(dto); err != nil {
		return model.Product{}, err
	}
	return p.col.create(ctx, dto)
}

func (p *Products) Update(ctx context.Context, id int64, dto model.UpdateProductDTO) (model.Product, error) {
	if err := ValidateUpdateProduct(dto); err != nil {
		return model.Product{}, err
	}
	return p.col.update(ctx, id, dto)
}

func (p *Products) Delete(ctx context.Context, id int64) error {
	return p.col.delete(ctx, id)
}

type Professionals struct {
	col collection[model.Professional, model.CreateProfessionalDTO, model.UpdateProfessionalDTO]
}

func NewProfessionals(doer Doer) *Professionals {
	return &Professionals{col: collection[model.Professional, model.CreateProfessionalDTO, model.UpdateProfessionalDTO]{
		api: doer, path: "/professionals", envelope: "user", label: "professional",
	}}
}

func (p *Professionals) List(ctx context.Context, filter ProfessionalFilter) ([]model.Professional, error) {
	return p.col.list(ctx, termQuery(filter.Term))
}

func (p *Professionals) Get(ctx context.Context, id int64) (model.Professional, error) {
	return p.col.get(ctx, p.col.itemPath(id))
}

func (p *Professionals) Create(ctx context.Context, dto model.CreateProfessionalDTO) (model.Professional, error) {
	if err := ValidateCreateProfessional(dto); err != nil {
		return model.Professional{}, err
	}
	return p.col.create(ctx, dto)
}

// Update never sends a blank password: the stored one is kept.
func (p *Professionals) Update(ctx context.Context, id int64, dto model.UpdateProfessionalDTO) (model.Professional, error) {
	if dto.Password != nil && strings.TrimSpace(*dto.Password) == "" {
		dto.Password = nil
	}
	if err := ValidateUpdateProfessional(dto); err != nil {
		return model.Professional{}, err
	}
	return p.col.update(ctx, id, dto)
}

func (p *Professionals) Delete(ctx context.Context, id int64) error {
	return p.col.delete(ctx, id)
}
