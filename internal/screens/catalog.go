package screens

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"linkeats/console/internal/api"
	"linkeats/console/internal/model"
	"linkeats/console/internal/resources"
)

// AllPositions is the staff filter value that selects every position.
const AllPositions = "all"

type ClientService interface {
	List(ctx context.Context, filter resources.ClientFilter) ([]model.Client, error)
	Get(ctx context.Context, id int64) (model.Client, error)
	Create(ctx context.Context, dto model.CreateClientDTO) (model.Client, error)
	Update(ctx context.Context, id int64, dto model.UpdateClientDTO) (model.Client, error)
	Delete(ctx context.Context, id int64) error
}

type ProductService interface {
	List(ctx context.Context, filter resources.ProductFilter) ([]model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id int64) (model.Product, error)
	Create(ctx context.Context, dto model.CreateProductDTO) (model.Product, error)
	Update(ctx context.Context, id int64, dto model.UpdateProductDTO) (model.Product, error)
	Delete(ctx context.Context, id int64) error
}

type ProfessionalService interface {
	List(ctx context.Context, filter resources.ProfessionalFilter) ([]model.Professional, error)
	Get(ctx context.Context, id int64) (model.Professional, error)
	Create(ctx context.Context, dto model.CreateProfessionalDTO) (model.Professional, error)
	Update(ctx context.Context, id int64, dto model.UpdateProfessionalDTO) (model.Professional, error)
	Delete(ctx context.Context, id int64) error
}

// ErrorMessage is the text shown in a screen's message slot.
func ErrorMessage(err error) string {
	if err == nil || errors.Is(err, ErrSuperseded) {
		return ""
	}
	var verr *resources.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	if errors.Is(err, resources.ErrNotFound) {
		return api.Message(err, "Registro não encontrado")
	}
	return api.Message(err, "Erro ao carregar dados")
}

// Clients

type ClientsView struct {
	Items []model.Client
	Term  string
	Error string
}

type Clients struct {
	svc  ClientService
	list Loader[model.Client]
	term string
	last ClientsView
}

func NewClients(svc ClientService) *Clients {
	return &Clients{svc: svc}
}

func (c *Clients) Load(ctx context.Context, term string) ClientsView {
	c.term = term
	view := ClientsView{Term: term}
	items, err := c.list.Load(ctx, func(ctx context.Context) ([]model.Client, error) {
		return c.svc.List(ctx, resources.ClientFilter{Term: term})
	})
	view.Items = items
	view.Error = ErrorMessage(err)
	c.last = view
	return view
}

// View is the result of the latest Load, including the reload after a
// mutation.
func (c *Clients) View() ClientsView { return c.last }

func (c *Clients) Create(ctx context.Context, form ClientForm) error {
	if _, err := c.svc.Create(ctx, form.CreateDTO()); err != nil {
		return err
	}
	c.Load(ctx, c.term)
	return nil
}

func (c *Clients) Edit(ctx context.Context, id int64, form ClientForm) error {
	current, err := c.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	dto, err := ClientDiff(current, form)
	if err != nil {
		return err
	}
	if !EmptyClientUpdate(dto) {
		if _, err := c.svc.Update(ctx, id, dto); err != nil {
			return err
		}
	}
	c.Load(ctx, c.term)
	return nil
}

func (c *Clients) Delete(ctx context.Context, id int64) error {
	if err := c.svc.Delete(ctx, id); err != nil {
		return err
	}
	c.Load(ctx, c.term)
	return nil
}

// Products

type ProductsView struct {
	Items      []model.Product
	Categories []string
	Category   string
	Term       string
	Error      string
}

type Products struct {
	svc      ProductService
	list     Loader[model.Product]
	term     string
	category string
	last     ProductsView
}

func NewProducts(svc ProductService) *Products {
	return &Products{svc: svc, category: resources.AllCategories}
}

// Load fetches the filtered list and the category options together.
func (p *Products) Load(ctx context.Context, term, category string) ProductsView {
	if category == "" {
		category = resources.AllCategories
	}
	p.term, p.category = term, category
	view := ProductsView{Term: term, Category: category}

	var categories []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := p.list.Load(gctx, func(ctx context.Context) ([]model.Product, error) {
			return p.svc.List(ctx, resources.ProductFilter{Term: term, Category: category})
		})
		view.Items = items
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = p.svc.Categories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		view.Error = ErrorMessage(err)
	}
	view.Categories = append([]string{resources.AllCategories}, categories...)
	p.last = view
	return view
}

func (p *Products) View() ProductsView { return p.last }

func (p *Products) Create(ctx context.Context, form ProductForm) error {
	dto, err := form.CreateDTO()
	if err != nil {
		return err
	}
	if _, err := p.svc.Create(ctx, dto); err != nil {
		return err
	}
	p.Load(ctx, p.term, p.category)
	return nil
}

func (p *Products) Edit(ctx context.Context, id int64, form ProductForm) error {
	current, err := p.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	dto, err := ProductDiff(current, form)
	if err != nil {
		return err
	}
	if !EmptyProductUpdate(dto) {
		if _, err := p.svc.Update(ctx, id, dto); err != nil {
			return err
		}
	}
	p.Load(ctx, p.term, p.category)
	return nil
}

func (p *Products) Delete(ctx context.Context, id int64) error {
	if err := p.svc.Delete(ctx, id); err != nil {
		return err
	}
	p.Load(ctx, p.term, p.category)
	return nil
}

// Staff

type StaffView struct {
	Items     []model.Professional
	Positions []string
	Position  string
	Term      string
	Error     string
}

type Staff struct {
	svc      ProfessionalService
	list     Loader[model.Professional]
	term     string
	position string
	last     StaffView
}

func NewStaff(svc ProfessionalService) *Staff {
	return &Staff{svc: svc, position: AllPositions}
}

// Load fetches professionals by term; the position filter runs in memory over
// the fetched set.
func (s *Staff) Load(ctx context.Context, term, position string) StaffView {
	if position == "" {
		position = AllPositions
	}
	s.term, s.position = term, position
	view := StaffView{Term: term, Position: position}
	items, err := s.list.Load(ctx, func(ctx context.Context) ([]model.Professional, error) {
		return s.svc.List(ctx, resources.ProfessionalFilter{Term: term})
	})
	view.Error = ErrorMessage(err)
	view.Positions = UniquePositions(items)
	view.Items = FilterByPosition(items, position)
	s.last = view
	return view
}

func (s *Staff) View() StaffView { return s.last }

func FilterByPosition(items []model.Professional, position string) []model.Professional {
	if position == "" || position == AllPositions {
		return items
	}
	out := make([]model.Professional, 0, len(items))
	for _, p := range items {
		if p.Position == position {
			out = append(out, p)
		}
	}
	return out
}

// UniquePositions keeps first-seen order.
func UniquePositions(items []model.Professional) []string {
	seen := make(map[string]struct{}, len(items))
	out := []string{}
	for _, p := range items {
		if _, ok := seen[p.Position]; ok {
			continue
		}
		seen[p.Position] = struct{}{}
		out = append(out, p.Position)
	}
	return out
}

func (s *Staff) Create(ctx context.Context, form ProfessionalForm) error {
	if _, err := s.svc.Create(ctx, form.CreateDTO()); err != nil {
		return err
	}
	s.Load(ctx, s.term, s.position)
	return nil
}

func (s *Staff) Edit(ctx context.Context, id int64, form ProfessionalForm) error {
	current, err := s.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	dto, err := ProfessionalDiff(current, form)
	if err != nil {
		return err
	}
	if !EmptyProfessionalUpdate(dto) {
		if _, err := s.svc.Update(ctx, id, dto); err != nil {
			return err
		}
	}
	s.Load(ctx, s.term, s.position)
	return nil
}

func (s *Staff) Delete(ctx context.Context, id int64) error {
	if err := s.svc.Delete(ctx, id); err != nil {
		return err
	}
	s.Load(ctx, s.term, s.position)
	return nil
}
