package screens

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"linkeats/console/internal/model"
	"linkeats/console/internal/resources"
)

type Stat struct {
	Title  string
	Value  string
	Change string
	Trend  string
}

type MonthlyOrders struct {
	Month  string
	Orders int
}

type RecentOrder struct {
	ID     string
	Client string
	Total  string
	Status string
	Date   string
}

type LiveCounts struct {
	Clients       int
	Products      int
	Professionals int
}

type DashboardView struct {
	Greeting  string
	Date      string
	UserName  string
	Stats     []Stat
	Monthly   []MonthlyOrders
	MaxOrders int
	Recent    []RecentOrder
	Counts    LiveCounts
	Error     string
}

// Sales figures are not served by the API yet.
var (
	dashboardStats = []Stat{
		{Title: "Pedidos do dia", Value: "124", Change: "+12.5% desde ontem passado", Trend: "up"},
		{Title: "Vendas totais", Value: "R$ 7.850,00", Change: "+8.1% desde a semana passada", Trend: "up"},
		{Title: "Clientes ativos", Value: "2.450", Change: "+1.2% desde o mês passado", Trend: "up"},
		{Title: "Itens em estoque", Value: "1.580", Change: "+3.05% última semana", Trend: "up"},
	}
	monthlyOrders = []MonthlyOrders{
		{"Jan", 200}, {"Fev", 320}, {"Mar", 240}, {"Abr", 280}, {"Mai", 310}, {"Jun", 300},
		{"Jul", 350}, {"Ago", 320}, {"Set", 380}, {"Out", 310}, {"Nov", 400}, {"Dez", 360},
	}
	recentOrders = []RecentOrder{
		{ID: "PED001", Client: "João Silva", Total: "R$ 85,50", Status: "Concluído", Date: "2024-07-28 14:30"},
		{ID: "PED002", Client: "Maria Oliveira", Total: "R$ 120,00", Status: "Pendente", Date: "2024-07-28 15:15"},
		{ID: "PED003", Client: "Carlos Souza", Total: "R$ 55,00", Status: "Concluído", Date: "2024-07-27 19:00"},
		{ID: "PED004", Client: "Ana Costa", Total: "R$ 210,99", Status: "Concluído", Date: "2024-07-27 18:45"},
		{ID: "PED005", Client: "Pedro Santos", Total: "R$ 42,00", Status: "Cancelado", Date: "2024-07-27 17:00"},
	}
)

type Dashboard struct {
	clients       ClientService
	products      ProductService
	professionals ProfessionalService
}

func NewDashboard(clients ClientService, products ProductService, professionals ProfessionalService) *Dashboard {
	return &Dashboard{clients: clients, products: products, professionals: professionals}
}

// Load builds the dashboard; the three live counts are fetched concurrently.
func (d *Dashboard) Load(ctx context.Context, user *model.User, now time.Time) DashboardView {
	view := DashboardView{
		Greeting: Greeting(now.Hour()),
		Date:     FormatLongDate(now),
		Stats:    dashboardStats,
		Monthly:  monthlyOrders,
		Recent:   recentOrders,
	}
	if user != nil {
		view.UserName = firstName(user.Name)
	}
	for _, m := range monthlyOrders {
		if m.Orders > view.MaxOrders {
			view.MaxOrders = m.Orders
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := d.clients.List(gctx, resources.ClientFilter{})
		view.Counts.Clients = len(items)
		return err
	})
	g.Go(func() error {
		items, err := d.products.List(gctx, resources.ProductFilter{})
		view.Counts.Products = len(items)
		return err
	})
	g.Go(func() error {
		items, err := d.professionals.List(gctx, resources.ProfessionalFilter{})
		view.Counts.Professionals = len(items)
		return err
	})
	if err := g.Wait(); err != nil {
		view.Error = ErrorMessage(err)
	}
	return view
}

func Greeting(hour int) string {
	switch {
	case hour < 12:
		return "Bom dia"
	case hour < 18:
		return "Boa tarde"
	default:
		return "Boa noite"
	}
}

var (
	weekdays = [...]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"}
	months   = [...]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}
)

// FormatLongDate renders t as "segunda-feira, 3 de junho de 2024".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d", weekdays[t.Weekday()], t.Day(), months[t.Month()-1], t.Year())
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
