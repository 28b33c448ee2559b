package resources

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"linkeats/console/internal/api"
	"linkeats/console/internal/config"
	"linkeats/console/internal/devapi"
	"linkeats/console/internal/model"
)

func setup(t *testing.T) (context.Context, *api.Client) {
	t.Helper()
	cfg := config.DevAPIConfig{
		JWTSecret:      "test-secret",
		JWTIssuer:      "test-issuer",
		TokenTTL:       time.Hour,
		ResetCodeTTL:   time.Minute,
		SeedCompanyID:  2,
		SeedAdminEmail: "admin@linkeats.local",
		SeedAdminPass:  "admin123",
	}
	store := devapi.NewStore(cfg.ResetCodeTTL)
	if _, err := devapi.Seed(store, cfg); err != nil {
		t.Fatalf("seed: %v", err)
	}
	app := httptest.NewServer(devapi.NewServer(cfg, store, nil).Router())
	t.Cleanup(app.Close)

	client := api.NewClient(app.URL, 5*time.Second, nil)
	resp, err := client.Login(context.Background(), cfg.SeedAdminEmail, cfg.SeedAdminPass)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	ctx := api.WithCredentials(context.Background(), api.Credentials{
		Token:    resp.Token,
		TenantID: resp.Principal().TenantID(),
	})
	return ctx, client
}

func TestClientLifecycle(t *testing.T) {
	ctx, client := setup(t)
	clients := NewClients(client)

	created, err := clients.Create(ctx, model.CreateClientDTO{
		Name:     "Ana",
		Phone:    "11999990000",
		Address:  "Rua A, 1",
		Email:    "ana@x.com",
		Document: model.StringPtr("12345678900"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.CompanyID != 2 {
		t.Fatalf("unexpected created client %+v", created)
	}

	got, err := clients.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Ana" || got.Email != "ana@x.com" || got.Phone != "11999990000" ||
		got.Address != "Rua A, 1" || got.Document == nil || *got.Document != "12345678900" {
		t.Fatalf("unexpected client %+v", got)
	}

	updated, err := clients.Update(ctx, created.ID, model.UpdateClientDTO{Name: model.StringPtr("Ana Maria")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Ana Maria" || updated.Phone != "11999990000" || updated.Address != "Rua A, 1" {
		t.Fatalf("expected only name to change, got %+v", updated)
	}

	byDoc, err := clients.GetByDocument(ctx, "12345678900")
	if err != nil || byDoc.ID != created.ID {
		t.Fatalf("get by document: %+v %v", byDoc, err)
	}
	byPhone, err := clients.GetByPhone(ctx, "11999990000")
	if err != nil || byPhone.ID != created.ID {
		t.Fatalf("get by phone: %+v %v", byPhone, err)
	}

	list, err := clients.List(ctx, ClientFilter{Term: "maria"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one match, got %d", len(list))
	}

	if err := clients.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = clients.Get(ctx, created.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Message != "Cliente não encontrado" {
		t.Fatalf("expected backend message to survive, got %v", err)
	}
}

func TestProductLifecycle(t *testing.T) {
	ctx, client := setup(t)
	products := NewProducts(client)

	created, err := products.Create(ctx, model.CreateProductDTO{
		Name:     "Pizza margherita",
		Price:    45.9,
		Category: "Pizzas",
		Notes:    model.StringPtr("sem cebola"),
		Size:     model.BoolPtr(true),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := products.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID || got.Name != "Pizza margherita" || got.Price != 45.9 || got.Category != "Pizzas" ||
		got.Notes == nil || *got.Notes != "sem cebola" || !got.Size || got.CompanyID != 2 {
		t.Fatalf("unexpected product %+v", got)
	}

	updated, err := products.Update(ctx, created.ID, model.UpdateProductDTO{Price: model.Float64Ptr(49.9)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 49.9 {
		t.Fatalf("expected new price, got %v", updated.Price)
	}
	if updated.Name != got.Name || updated.Category != got.Category || updated.Size != got.Size ||
		updated.Notes == nil || *updated.Notes != "sem cebola" {
		t.Fatalf("expected only price to change, got %+v", updated)
	}

	if err := products.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := products.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := products.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestProfessionalLifecycle(t *testing.T) {
	ctx, client := setup(t)
	professionals := NewProfessionals(client)

	created, err := professionals.Create(ctx, model.CreateProfessionalDTO{
		Name:        "Bia",
		Email:       "bia@x.com",
		Password:    "senha123",
		Position:    "Cozinheira",
		PhoneNumber: model.StringPtr("11988887777"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := professionals.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID || got.Name != "Bia" || got.Email != "bia@x.com" || got.Position != "Cozinheira" ||
		got.PhoneNumber != "11988887777" || got.CompanyID != 2 {
		t.Fatalf("unexpected professional %+v", got)
	}

	updated, err := professionals.Update(ctx, created.ID, model.UpdateProfessionalDTO{Name: model.StringPtr("Beatriz")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Beatriz" {
		t.Fatalf("expected new name, got %q", updated.Name)
	}
	if updated.Email != got.Email || updated.Position != got.Position || updated.PhoneNumber != got.PhoneNumber {
		t.Fatalf("expected only name to change, got %+v", updated)
	}

	if err := professionals.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := professionals.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCreateValidationSendsNothing(t *testing.T) {
	var hits int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ctx := api.WithCredentials(context.Background(), api.Credentials{Token: "t", TenantID: "2"})
	client := api.NewClient(srv.URL, time.Second, nil)

	_, err := NewClients(client).Create(ctx, model.CreateClientDTO{Name: "Ana", Email: "a@x.com"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if strings.Join(verr.Fields, ",") != "phone,address" {
		t.Fatalf("unexpected missing fields %v", verr.Fields)
	}

	_, err = NewProducts(client).Create(ctx, model.CreateProductDTO{Name: "Suco", Category: "Bebidas", Price: 0})
	if !errors.As(err, &verr) || verr.Message != MsgPricePositive {
		t.Fatalf("expected price validation, got %v", err)
	}

	for _, price := range []float64{math.NaN(), math.Inf(1)} {
		_, err = NewProducts(client).Create(ctx, model.CreateProductDTO{Name: "Suco", Category: "Bebidas", Price: price})
		if !errors.As(err, &verr) || verr.Message != MsgPricePositive {
			t.Fatalf("expected price validation for %v, got %v", price, err)
		}
		_, err = NewProducts(client).Update(ctx, 1, model.UpdateProductDTO{Price: model.Float64Ptr(price)})
		if !errors.As(err, &verr) || verr.Message != MsgPricePositive {
			t.Fatalf("expected update price validation for %v, got %v", price, err)
		}
	}

	_, err = NewProfessionals(client).Create(ctx, model.CreateProfessionalDTO{Name: "Bia", Email: "b@x.com", Position: "Garçom"})
	if !errors.As(err, &verr) || verr.Fields[0] != "password" {
		t.Fatalf("expected password validation, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if hits != 0 {
		t.Fatalf("expected no request, got %d", hits)
	}
}

func TestMissingTenantFailsBeforeRequest(t *testing.T) {
	client := api.NewClient("http://127.0.0.1:1", time.Second, nil)
	_, err := NewProducts(client).List(context.Background(), ProductFilter{})
	if !errors.Is(err, ErrNoTenant) {
		t.Fatalf("expected ErrNoTenant, got %v", err)
	}
}

func TestProductCategoryFilter(t *testing.T) {
	ctx, client := setup(t)
	products := NewProducts(client)

	for _, dto := range []model.CreateProductDTO{
		{Name: "Suco de laranja", Price: 8.5, Category: "Bebidas"},
		{Name: "Hambúrguer", Price: 32, Category: "Lanches", Size: model.BoolPtr(true)},
		{Name: "Refrigerante", Price: 6, Category: "Bebidas"},
	} {
		if _, err := products.Create(ctx, dto); err != nil {
			t.Fatalf("create %s: %v", dto.Name, err)
		}
	}

	all, err := products.List(ctx, ProductFilter{Category: AllCategories})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected Todos to return every product, got %d", len(all))
	}

	drinks, err := products.List(ctx, ProductFilter{Category: "Bebidas"})
	if err != nil {
		t.Fatalf("list drinks: %v", err)
	}
	if len(drinks) != 2 {
		t.Fatalf("expected 2 drinks, got %d", len(drinks))
	}

	categories, err := products.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if strings.Join(categories, ",") != "Bebidas,Lanches" {
		t.Fatalf("unexpected categories %v", categories)
	}

	_, err = products.Update(ctx, all[0].ID, model.UpdateProductDTO{Price: model.Float64Ptr(-1)})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected price validation on update, got %v", err)
	}

	updated, err := products.Update(ctx, all[0].ID, model.UpdateProductDTO{Price: model.Float64Ptr(9)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 9 || updated.Name != "Suco de laranja" {
		t.Fatalf("unexpected updated product %+v", updated)
	}
}

func TestProfessionalBlankPasswordKeepsStoredPassword(t *testing.T) {
	ctx, client := setup(t)
	professionals := NewProfessionals(client)

	created, err := professionals.Create(ctx, model.CreateProfessionalDTO{
		Name:     "Carlos",
		Email:    "carlos@x.com",
		Password: "original1",
		Position: "Garçom",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := professionals.Update(ctx, created.ID, model.UpdateProfessionalDTO{
		Position: model.StringPtr("Gerente"),
		Password: model.StringPtr("   "),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Position != "Gerente" || updated.Name != "Carlos" {
		t.Fatalf("unexpected professional %+v", updated)
	}

	resp, err := client.Login(context.Background(), "carlos@x.com", "original1")
	if err != nil {
		t.Fatalf("expected original password to still work: %v", err)
	}
	if resp.User == nil || resp.Client != nil {
		t.Fatalf("expected professional login under the user key, got %+v", resp)
	}
}

func TestProfessionalUpdateOmitsBlankPassword(t *testing.T) {
	var body string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		mu.Lock()
		body = buf.String()
		mu.Unlock()
		_, _ = w.Write([]byte(`{"user":{"id":5,"name":"Carlos"}}`))
	}))
	defer srv.Close()

	ctx := api.WithCredentials(context.Background(), api.Credentials{Token: "t", TenantID: "2"})
	got, err := NewProfessionals(api.NewClient(srv.URL, time.Second, nil)).Update(ctx, 5, model.UpdateProfessionalDTO{
		Name:     model.StringPtr("Carlos"),
		Password: model.StringPtr(""),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ID != 5 {
		t.Fatalf("expected envelope to be unwrapped, got %+v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if strings.Contains(body, "password") {
		t.Fatalf("blank password must not be sent, body %s", body)
	}
	if body != `{"name":"Carlos"}` {
		t.Fatalf("expected only supplied fields, body %s", body)
	}
}

func TestListFailurePropagatesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Falha no banco"}`))
	}))
	defer srv.Close()

	ctx := api.WithCredentials(context.Background(), api.Credentials{Token: "t", TenantID: "2"})
	_, err := NewClients(api.NewClient(srv.URL, time.Second, nil)).List(ctx, ClientFilter{})
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("500 must not be classified as not found")
	}
	if api.Message(err, "") != "Falha no banco" {
		t.Fatalf("unexpected message %q", api.Message(err, ""))
	}
}
