package screens

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"linkeats/console/internal/model"
)

// The floor and ticket screens run on seeded data until the API exposes
// tables and orders.

func seedTables() []model.Table {
	reserved := func(id int) model.Table {
		return model.Table{ID: id, Status: model.TableReserved, Reservation: &model.Reservation{Name: "João Silva", Time: "19:00"}}
	}
	occupied := func(id int) model.Table {
		return model.Table{ID: id, Status: model.TableOccupied, OccupiedSince: "14:30"}
	}
	free := func(id int) model.Table {
		return model.Table{ID: id, Status: model.TableFree}
	}
	return []model.Table{
		free(1), occupied(2), reserved(3), free(4),
		occupied(5), free(6), reserved(7), occupied(8),
		free(9), occupied(10), free(11), reserved(12),
		free(13), occupied(14), free(15), reserved(16),
	}
}

func seedOrders() map[int]model.OrderDetails {
	return map[int]model.OrderDetails{
		2: {TableID: 2, CommandID: "CMD001", Client: "Maria Santos", Items: []model.OrderItem{
			{ID: "1", Name: "Big Mac", Price: 25.99, Quantity: 1, Image: "🍔"},
			{ID: "2", Name: "Big Burg", Price: 22.69, Quantity: 1, Image: "🍔"},
			{ID: "3", Name: "Batata Frita", Price: 12.50, Quantity: 2, Image: "🍟"},
		}, Subtotal: 73.68, Tax: 7.37, Total: 81.05},
		5: {TableID: 5, CommandID: "CMD002", Client: "Pedro Costa", Items: []model.OrderItem{
			{ID: "1", Name: "Hambúrguer Clássico", Price: 25.99, Quantity: 1, Image: "🍔"},
			{ID: "2", Name: "Coca-Cola", Price: 8.00, Quantity: 2, Image: "🥤"},
		}, Subtotal: 41.99, Tax: 4.20, Total: 46.19},
		8: {TableID: 8, CommandID: "CMD003", Client: "Ana Oliveira", Items: []model.OrderItem{
			{ID: "1", Name: "Pizza Calabresa", Price: 45.00, Quantity: 1, Image: "🍕"},
			{ID: "2", Name: "Pizza Marguerita", Price: 42.00, Quantity: 1, Image: "🍕"},
			{ID: "3", Name: "Refrigerante", Price: 8.00, Quantity: 2, Image: "🥤"},
		}, Subtotal: 103.00, Tax: 10.30, Total: 113.30},
		10: {TableID: 10, CommandID: "CMD004", Client: "Carlos Lima", Items: []model.OrderItem{
			{ID: "1", Name: "Double Big", Price: 32.10, Quantity: 1, Image: "🍔"},
			{ID: "2", Name: "Batata Frita Grande", Price: 15.00, Quantity: 1, Image: "🍟"},
			{ID: "3", Name: "Milkshake", Price: 18.00, Quantity: 1, Image: "🥤"},
		}, Subtotal: 65.10, Tax: 6.51, Total: 71.61},
	}
}

func seedTickets() []model.Ticket {
	return []model.Ticket{
		{ID: "CMD001", Table: 2, Client: "Maria Santos", Items: 5, Total: 125.5, StartTime: "14:30", Duration: "1h 30min"},
		{ID: "CMD002", Table: 5, Client: "Pedro Costa", Items: 3, Total: 89.0, StartTime: "15:15", Duration: "45min"},
		{ID: "CMD003", Table: 8, Client: "Ana Oliveira", Items: 7, Total: 210.0, StartTime: "13:45", Duration: "2h 15min"},
		{ID: "CMD004", Table: 10, Client: "Carlos Lima", Items: 4, Total: 156.75, StartTime: "14:00", Duration: "2h"},
	}
}

type TableCounts struct {
	Free     int
	Occupied int
	Reserved int
}

type TablesView struct {
	Tables   []model.Table
	Counts   TableCounts
	Selected *model.OrderDetails
	// SelectedID is set when a table was picked, with or without an order.
	SelectedID int
}

type Floor struct {
	tables []model.Table
	orders map[int]model.OrderDetails
}

func NewFloor() *Floor {
	return &Floor{tables: seedTables(), orders: seedOrders()}
}

func (f *Floor) Tables() []model.Table {
	out := make([]model.Table, len(f.tables))
	copy(out, f.tables)
	return out
}

func (f *Floor) Counts() TableCounts {
	var c TableCounts
	for _, t := range f.tables {
		switch t.Status {
		case model.TableFree:
			c.Free++
		case model.TableOccupied:
			c.Occupied++
		case model.TableReserved:
			c.Reserved++
		}
	}
	return c
}

func (f *Floor) Order(tableID int) (model.OrderDetails, bool) {
	o, ok := f.orders[tableID]
	return o, ok
}

func (f *Floor) View(selected int) TablesView {
	view := TablesView{Tables: f.Tables(), Counts: f.Counts(), SelectedID: selected}
	if o, ok := f.Order(selected); ok {
		view.Selected = &o
	}
	return view
}

type TicketStats struct {
	Active          int
	AverageDuration string
	Total           float64
}

type TicketsView struct {
	Items []model.Ticket
	Term  string
	Stats TicketStats
}

type Tickets struct {
	items []model.Ticket
}

func NewTickets() *Tickets {
	return &Tickets{items: seedTickets()}
}

// Search matches the ticket id, the client, or the table number.
func SearchTickets(items []model.Ticket, term string) []model.Ticket {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	out := make([]model.Ticket, 0, len(items))
	for _, t := range items {
		table := strconv.Itoa(t.Table)
		if strings.Contains(strings.ToLower(t.ID), term) ||
			strings.Contains(strings.ToLower(t.Client), term) ||
			term == table || term == "mesa "+table {
			out = append(out, t)
		}
	}
	return out
}

func (t *Tickets) View(term string) TicketsView {
	items := SearchTickets(t.items, term)
	return TicketsView{Items: items, Term: term, Stats: ticketStats(t.items)}
}

func ticketStats(items []model.Ticket) TicketStats {
	stats := TicketStats{Active: len(items)}
	var minutes int
	for _, t := range items {
		stats.Total += t.Total
		minutes += parseDuration(t.Duration)
	}
	if len(items) > 0 {
		avg := int(math.Round(float64(minutes) / float64(len(items))))
		stats.AverageDuration = formatMinutes(avg)
	}
	return stats
}

// parseDuration reads "1h 30min", "45min" and "2h" as minutes.
func parseDuration(s string) int {
	var total int
	for _, part := range strings.Fields(s) {
		switch {
		case strings.HasSuffix(part, "min"):
			n, _ := strconv.Atoi(strings.TrimSuffix(part, "min"))
			total += n
		case strings.HasSuffix(part, "h"):
			n, _ := strconv.Atoi(strings.TrimSuffix(part, "h"))
			total += n * 60
		}
	}
	return total
}

func formatMinutes(m int) string {
	h, rest := m/60, m%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", rest)
	case rest == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, rest)
	}
}
