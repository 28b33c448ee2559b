package screens

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"linkeats/console/internal/api"
	"linkeats/console/internal/model"
	"linkeats/console/internal/resources"
)

func TestLoaderDropsStaleResult(t *testing.T) {
	var l Loader[int]
	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	var staleErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, staleErr = l.Load(context.Background(), func(context.Context) ([]int, error) {
			close(started)
			<-release
			return []int{1}, nil
		})
	}()
	<-started

	items, err := l.Load(context.Background(), func(context.Context) ([]int, error) {
		return []int{2, 3}, nil
	})
	if err != nil || len(items) != 2 {
		t.Fatalf("fresh load: items=%v err=%v", items, err)
	}
	close(release)
	wg.Wait()

	if !errors.Is(staleErr, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", staleErr)
	}
	if got := l.Items(); len(got) != 2 || got[0] != 2 {
		t.Fatalf("stale result overwrote state: %v", got)
	}
	if l.Loading() {
		t.Fatalf("expected loading to be cleared")
	}
}

func TestLoaderKeepsItemsOnError(t *testing.T) {
	var l Loader[string]
	_, _ = l.Load(context.Background(), func(context.Context) ([]string, error) {
		return []string{"a"}, nil
	})
	boom := errors.New("boom")
	if _, err := l.Load(context.Background(), func(context.Context) ([]string, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !errors.Is(l.Err(), boom) {
		t.Fatalf("expected Err to hold the failure")
	}
	if got := l.Items(); len(got) != 1 {
		t.Fatalf("expected previous items kept, got %v", got)
	}
}

func TestClientDiffSendsOnlyChangedFields(t *testing.T) {
	current := model.Client{ID: 1, Name: "Ana", Phone: "111", Address: "Rua A", Email: "ana@x.com"}
	form := ClientForm{Name: "Ana", Phone: "222", Address: "Rua A", Email: "ana@x.com"}

	dto, err := ClientDiff(current, form)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if dto.Phone == nil || *dto.Phone != "222" {
		t.Fatalf("expected phone change, got %+v", dto)
	}
	if dto.Name != nil || dto.Address != nil || dto.Email != nil || dto.Document != nil {
		t.Fatalf("unchanged fields were sent: %+v", dto)
	}

	dto, err = ClientDiff(current, ClientForm{Name: "Ana", Phone: "111", Address: "Rua A", Email: "ana@x.com"})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !EmptyClientUpdate(dto) {
		t.Fatalf("expected empty update, got %+v", dto)
	}
}

func TestClientDiffRequiresFields(t *testing.T) {
	_, err := ClientDiff(model.Client{}, ClientForm{Name: "Ana"})
	var verr *resources.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Message != resources.MsgRequiredFields {
		t.Fatalf("unexpected message %q", verr.Message)
	}
	if len(verr.Fields) != 3 || verr.Fields[0] != "phone" {
		t.Fatalf("unexpected fields %v", verr.Fields)
	}
}

func TestProductDiffRejectsNonPositivePrice(t *testing.T) {
	current := model.Product{Name: "Pizza", Price: 40, Category: "Pizzas"}
	_, err := ProductDiff(current, ProductForm{Name: "Pizza", Price: "0", Category: "Pizzas"})
	var verr *resources.ValidationError
	if !errors.As(err, &verr) || verr.Message != resources.MsgPricePositive {
		t.Fatalf("expected price validation, got %v", err)
	}

	dto, err := ProductDiff(current, ProductForm{Name: "Pizza", Price: "42,50", Category: "Pizzas", Size: true})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if dto.Price == nil || *dto.Price != 42.5 {
		t.Fatalf("expected price 42.5, got %+v", dto.Price)
	}
	if dto.Size == nil || !*dto.Size {
		t.Fatalf("expected size change")
	}
	if dto.Name != nil || dto.Category != nil || dto.Notes != nil {
		t.Fatalf("unchanged fields were sent: %+v", dto)
	}
}

func TestProfessionalDiffSkipsBlankPassword(t *testing.T) {
	current := model.Professional{Name: "Carlos", Email: "c@x.com", Position: "Garçom"}
	dto, err := ProfessionalDiff(current, ProfessionalForm{Name: "Carlos", Email: "c@x.com", Position: "Garçom", Password: "   "})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !EmptyProfessionalUpdate(dto) {
		t.Fatalf("expected empty update, got %+v", dto)
	}

	dto, err = ProfessionalDiff(current, ProfessionalForm{Name: "Carlos", Email: "c@x.com", Position: "Garçom", Password: "nova123"})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if dto.Password == nil || *dto.Password != "nova123" {
		t.Fatalf("expected password in update")
	}
}

func TestProductFormCreateDTO(t *testing.T) {
	form := ProductFormFromValues(url.Values{
		"name":     {" Burger "},
		"price":    {"R$ 1.234,50"},
		"category": {"Lanches"},
		"size":     {"on"},
	})
	dto, err := form.CreateDTO()
	if err != nil {
		t.Fatalf("create dto: %v", err)
	}
	if dto.Name != "Burger" || dto.Price != 1234.5 || dto.Size == nil || !*dto.Size || dto.Notes != nil {
		t.Fatalf("unexpected dto %+v", dto)
	}

	_, err = ProductFormFromValues(url.Values{"name": {"Burger"}}).CreateDTO()
	var verr *resources.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 2 {
		t.Fatalf("expected two missing fields, got %v", err)
	}
}

func TestProductFormRejectsNonFinitePrice(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-Inf", "+inf"} {
		if _, err := ParsePrice(raw); err == nil {
			t.Fatalf("%s: expected parse error", raw)
		}
		form := ProductForm{Name: "Burger", Price: raw, Category: "Lanches"}
		_, err := form.CreateDTO()
		var verr *resources.ValidationError
		if !errors.As(err, &verr) || verr.Message != resources.MsgPricePositive {
			t.Fatalf("%s: expected price validation, got %v", raw, err)
		}
	}
}

func TestPositionFilters(t *testing.T) {
	staff := []model.Professional{
		{Name: "A", Position: "Garçom"},
		{Name: "B", Position: "Cozinheiro"},
		{Name: "C", Position: "Garçom"},
	}
	positions := UniquePositions(staff)
	if len(positions) != 2 || positions[0] != "Garçom" || positions[1] != "Cozinheiro" {
		t.Fatalf("unexpected positions %v", positions)
	}
	if got := FilterByPosition(staff, "Garçom"); len(got) != 2 {
		t.Fatalf("expected 2 waiters, got %d", len(got))
	}
	if got := FilterByPosition(staff, AllPositions); len(got) != 3 {
		t.Fatalf("expected all staff, got %d", len(got))
	}
}

type fakeProducts struct {
	mu         sync.Mutex
	items      []model.Product
	categories []string
	listErr    error
	filters    []resources.ProductFilter
	updates    []model.UpdateProductDTO
}

func (f *fakeProducts) List(_ context.Context, filter resources.ProductFilter) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeProducts) Categories(context.Context) ([]string, error) {
	return f.categories, nil
}

func (f *fakeProducts) Get(_ context.Context, id int64) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, resources.ErrNotFound
}

func (f *fakeProducts) Create(_ context.Context, dto model.CreateProductDTO) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := model.Product{ID: int64(len(f.items) + 1), Name: dto.Name, Price: dto.Price, Category: dto.Category}
	f.items = append(f.items, p)
	return p, nil
}

func (f *fakeProducts) Update(_ context.Context, id int64, dto model.UpdateProductDTO) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, dto)
	return model.Product{ID: id}, nil
}

func (f *fakeProducts) Delete(context.Context, int64) error { return nil }

func TestProductsLoadPrependsAllCategory(t *testing.T) {
	svc := &fakeProducts{
		items:      []model.Product{{ID: 1, Name: "Pizza", Price: 40, Category: "Pizzas"}},
		categories: []string{"Bebidas", "Pizzas"},
	}
	view := NewProducts(svc).Load(context.Background(), "piz", "")
	if view.Error != "" {
		t.Fatalf("unexpected error %q", view.Error)
	}
	if len(view.Categories) != 3 || view.Categories[0] != resources.AllCategories {
		t.Fatalf("unexpected categories %v", view.Categories)
	}
	if view.Category != resources.AllCategories || len(view.Items) != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
	if svc.filters[0].Term != "piz" {
		t.Fatalf("term not forwarded: %+v", svc.filters[0])
	}
}

func TestProductsLoadShowsUpstreamMessage(t *testing.T) {
	svc := &fakeProducts{listErr: &api.Error{Status: 500, Message: "Falha no servidor"}}
	view := NewProducts(svc).Load(context.Background(), "", "Pizzas")
	if view.Error != "Falha no servidor" {
		t.Fatalf("unexpected error %q", view.Error)
	}
}

func TestProductsEditSkipsEmptyUpdate(t *testing.T) {
	svc := &fakeProducts{items: []model.Product{{ID: 1, Name: "Pizza", Price: 40, Category: "Pizzas"}}}
	products := NewProducts(svc)
	if err := products.Edit(context.Background(), 1, ProductForm{Name: "Pizza", Price: "40", Category: "Pizzas"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if len(svc.updates) != 0 {
		t.Fatalf("expected no update call, got %d", len(svc.updates))
	}
	if err := products.Edit(context.Background(), 1, ProductForm{Name: "Pizza G", Price: "40", Category: "Pizzas"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if len(svc.updates) != 1 || svc.updates[0].Name == nil || *svc.updates[0].Name != "Pizza G" {
		t.Fatalf("unexpected updates %+v", svc.updates)
	}
}

type countingClients struct{ n int }

func (c countingClients) List(context.Context, resources.ClientFilter) ([]model.Client, error) {
	return make([]model.Client, c.n), nil
}
func (countingClients) Get(context.Context, int64) (model.Client, error) { return model.Client{}, nil }
func (countingClients) Create(context.Context, model.CreateClientDTO) (model.Client, error) {
	return model.Client{}, nil
}
func (countingClients) Update(context.Context, int64, model.UpdateClientDTO) (model.Client, error) {
	return model.Client{}, nil
}
func (countingClients) Delete(context.Context, int64) error { return nil }

type countingStaff struct{ err error }

func (c countingStaff) List(context.Context, resources.ProfessionalFilter) ([]model.Professional, error) {
	if c.err != nil {
		return nil, c.err
	}
	return []model.Professional{{Name: "A"}}, nil
}
func (countingStaff) Get(context.Context, int64) (model.Professional, error) {
	return model.Professional{}, nil
}
func (countingStaff) Create(context.Context, model.CreateProfessionalDTO) (model.Professional, error) {
	return model.Professional{}, nil
}
func (countingStaff) Update(context.Context, int64, model.UpdateProfessionalDTO) (model.Professional, error) {
	return model.Professional{}, nil
}
func (countingStaff) Delete(context.Context, int64) error { return nil }

func TestDashboardLoad(t *testing.T) {
	products := &fakeProducts{items: []model.Product{{ID: 1}, {ID: 2}}}
	d := NewDashboard(countingClients{n: 3}, products, countingStaff{})
	now := time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)

	view := d.Load(context.Background(), &model.User{Name: "João Silva"}, now)
	if view.Greeting != "Bom dia" {
		t.Fatalf("unexpected greeting %q", view.Greeting)
	}
	if view.Date != "segunda-feira, 3 de junho de 2024" {
		t.Fatalf("unexpected date %q", view.Date)
	}
	if view.UserName != "João" {
		t.Fatalf("unexpected name %q", view.UserName)
	}
	if view.Counts != (LiveCounts{Clients: 3, Products: 2, Professionals: 1}) {
		t.Fatalf("unexpected counts %+v", view.Counts)
	}
	if view.MaxOrders != 400 || len(view.Monthly) != 12 || len(view.Recent) != 5 {
		t.Fatalf("unexpected static data %+v", view)
	}
}

func TestDashboardCountFailure(t *testing.T) {
	d := NewDashboard(countingClients{}, &fakeProducts{}, countingStaff{err: &api.Error{Status: 502, Message: api.MsgConnection}})
	view := d.Load(context.Background(), nil, time.Now())
	if view.Error != api.MsgConnection {
		t.Fatalf("unexpected error %q", view.Error)
	}
}

func TestGreeting(t *testing.T) {
	cases := map[int]string{0: "Bom dia", 11: "Bom dia", 12: "Boa tarde", 17: "Boa tarde", 18: "Boa noite", 23: "Boa noite"}
	for hour, want := range cases {
		if got := Greeting(hour); got != want {
			t.Fatalf("Greeting(%d) = %q, want %q", hour, got, want)
		}
	}
}

func TestFloorCountsAndOrders(t *testing.T) {
	floor := NewFloor()
	if got := floor.Counts(); got != (TableCounts{Free: 7, Occupied: 5, Reserved: 4}) {
		t.Fatalf("unexpected counts %+v", got)
	}
	view := floor.View(8)
	if view.Selected == nil || view.Selected.CommandID != "CMD003" {
		t.Fatalf("expected order for table 8, got %+v", view.Selected)
	}
	if view := floor.View(14); view.Selected != nil || view.SelectedID != 14 {
		t.Fatalf("table 14 has no seeded order: %+v", view.Selected)
	}
}

func TestTicketsSearchAndStats(t *testing.T) {
	tickets := NewTickets()
	view := tickets.View("maria")
	if len(view.Items) != 1 || view.Items[0].ID != "CMD001" {
		t.Fatalf("unexpected search result %+v", view.Items)
	}
	if got := tickets.View("10").Items; len(got) != 1 || got[0].Table != 10 {
		t.Fatalf("unexpected table search %+v", got)
	}
	if view.Stats.Active != 4 || view.Stats.Total != 581.25 {
		t.Fatalf("unexpected stats %+v", view.Stats)
	}
	if view.Stats.AverageDuration != "1h 38m" {
		t.Fatalf("unexpected average %q", view.Stats.AverageDuration)
	}
}

func TestFormatBRL(t *testing.T) {
	cases := map[float64]string{
		0:       "R$ 0,00",
		85.5:    "R$ 85,50",
		7850:    "R$ 7.850,00",
		1234567: "R$ 1.234.567,00",
		-42:     "-R$ 42,00",
	}
	for v, want := range cases {
		if got := FormatBRL(v); got != want {
			t.Fatalf("FormatBRL(%v) = %q, want %q", v, got, want)
		}
	}
}
