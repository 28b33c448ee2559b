package model

// Floor and ticket screens are not backed by the REST API yet; their data is
// seeded in code.

type TableStatus string

const (
	TableFree     TableStatus = "livre"
	TableOccupied TableStatus = "ocupada"
	TableReserved TableStatus = "reservada"
)

type Reservation struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

type Table struct {
	ID            int          `json:"id"`
	Status        TableStatus  `json:"status"`
	OccupiedSince string       `json:"occupiedSince,omitempty"`
	Reservation   *Reservation `json:"reservation,omitempty"`
}

type OrderItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

type OrderDetails struct {
	TableID   int         `json:"tableId"`
	CommandID string      `json:"commandId"`
	Client    string      `json:"client"`
	Items     []OrderItem `json:"items"`
	Subtotal  float64     `json:"subtotal"`
	Tax       float64     `json:"tax"`
	Total     float64     `json:"total"`
}

// Ticket is an open order ticket ("comanda") attached to a table.
type Ticket struct {
	ID        string  `json:"id"`
	Table     int     `json:"table"`
	Client    string  `json:"client"`
	Items     int     `json:"items"`
	Total     float64 `json:"total"`
	StartTime string  `json:"startTime"`
	Duration  string  `json:"duration"`
}
