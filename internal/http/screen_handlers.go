package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"linkeats/console/internal/api"
	"linkeats/console/internal/auth"
	"linkeats/console/internal/resources"
	"linkeats/console/internal/screens"
)

const (
	msgProductCreated      = "Produto criado com sucesso!"
	msgProductUpdated      = "Produto atualizado com sucesso!"
	msgProductDeleted      = "Produto excluído com sucesso!"
	msgClientCreated       = "Cliente criado com sucesso!"
	msgClientUpdated       = "Cliente atualizado com sucesso!"
	msgClientDeleted       = "Cliente excluído com sucesso!"
	msgProfessionalCreated = "Profissional criado com sucesso!"
	msgProfessionalUpdated = "Profissional atualizado com sucesso!"
	msgProfessionalDeleted = "Profissional excluído com sucesso!"
)

// failureStatus is the response code for a page re-rendered after a failed
// mutation.
func failureStatus(err error) int {
	var verr *resources.ValidationError
	var apiErr *api.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, resources.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, resources.ErrNoTenant):
		return http.StatusForbidden
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status
	default:
		return http.StatusBadGateway
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := auth.FromContext(r.Context()).User()
	view := screens.NewDashboard(s.clients, s.products, s.staff).Load(r.Context(), user, s.now())
	s.render(w, r, http.StatusOK, "dashboard", page{Title: "Dashboard", Data: view})
}

// Products

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := screens.NewProducts(s.products).Load(r.Context(), q.Get("q"), q.Get("category"))
	s.render(w, r, http.StatusOK, "products", page{Title: "Produtos", Data: view})
}

func (s *Server) productMutation(w http.ResponseWriter, r *http.Request, success string, mutate func(*screens.Products) error) {
	ctl := screens.NewProducts(s.products)
	if err := mutate(ctl); err != nil {
		view := ctl.Load(r.Context(), "", "")
		view.Error = screens.ErrorMessage(err)
		s.render(w, r, failureStatus(err), "products", page{Title: "Produtos", Data: view})
		return
	}
	s.render(w, r, http.StatusOK, "products", page{Title: "Produtos", Success: success, Data: ctl.View()})
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form")
		return
	}
	form := screens.ProductFormFromValues(r.PostForm)
	s.productMutation(w, r, msgProductCreated, func(ctl *screens.Products) error {
		return ctl.Create(r.Context(), form)
	})
}

func (s *Server) handleEditProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok || r.ParseForm() != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	form := screens.ProductFormFromValues(r.PostForm)
	s.productMutation(w, r, msgProductUpdated, func(ctl *screens.Products) error {
		return ctl.Edit(r.Context(), id, form)
	})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	s.productMutation(w, r, msgProductDeleted, func(ctl *screens.Products) error {
		return ctl.Delete(r.Context(), id)
	})
}

// Clients

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	view := screens.NewClients(s.clients).Load(r.Context(), r.URL.Query().Get("q"))
	s.render(w, r, http.StatusOK, "clients", page{Title: "Clientes", Data: view})
}

func (s *Server) clientMutation(w http.ResponseWriter, r *http.Request, success string, mutate func(*screens.Clients) error) {
	ctl := screens.NewClients(s.clients)
	if err := mutate(ctl); err != nil {
		view := ctl.Load(r.Context(), "")
		view.Error = screens.ErrorMessage(err)
		s.render(w, r, failureStatus(err), "clients", page{Title: "Clientes", Data: view})
		return
	}
	s.render(w, r, http.StatusOK, "clients", page{Title: "Clientes", Success: success, Data: ctl.View()})
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form")
		return
	}
	form := screens.ClientFormFromValues(r.PostForm)
	s.clientMutation(w, r, msgClientCreated, func(ctl *screens.Clients) error {
		return ctl.Create(r.Context(), form)
	})
}

func (s *Server) handleEditClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok || r.ParseForm() != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	form := screens.ClientFormFromValues(r.PostForm)
	s.clientMutation(w, r, msgClientUpdated, func(ctl *screens.Clients) error {
		return ctl.Edit(r.Context(), id, form)
	})
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	s.clientMutation(w, r, msgClientDeleted, func(ctl *screens.Clients) error {
		return ctl.Delete(r.Context(), id)
	})
}

// Staff

func (s *Server) handleStaff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := screens.NewStaff(s.staff).Load(r.Context(), q.Get("q"), q.Get("position"))
	s.render(w, r, http.StatusOK, "staff", page{Title: "Usuários", Data: view})
}

func (s *Server) staffMutation(w http.ResponseWriter, r *http.Request, success string, mutate func(*screens.Staff) error) {
	ctl := screens.NewStaff(s.staff)
	if err := mutate(ctl); err != nil {
		view := ctl.Load(r.Context(), "", "")
		view.Error = screens.ErrorMessage(err)
		s.render(w, r, failureStatus(err), "staff", page{Title: "Usuários", Data: view})
		return
	}
	s.render(w, r, http.StatusOK, "staff", page{Title: "Usuários", Success: success, Data: ctl.View()})
}

func (s *Server) handleCreateProfessional(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form")
		return
	}
	form := screens.ProfessionalFormFromValues(r.PostForm)
	s.staffMutation(w, r, msgProfessionalCreated, func(ctl *screens.Staff) error {
		return ctl.Create(r.Context(), form)
	})
}

func (s *Server) handleEditProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok || r.ParseForm() != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	form := screens.ProfessionalFormFromValues(r.PostForm)
	s.staffMutation(w, r, msgProfessionalUpdated, func(ctl *screens.Staff) error {
		return ctl.Edit(r.Context(), id, form)
	})
}

func (s *Server) handleDeleteProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	s.staffMutation(w, r, msgProfessionalDeleted, func(ctl *screens.Staff) error {
		return ctl.Delete(r.Context(), id)
	})
}

// Floor, tickets and settings

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "tables", page{Title: "Mesas", Data: s.floor.View(0)})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 || id > len(s.floor.Tables()) {
		http.NotFound(w, r)
		return
	}
	s.render(w, r, http.StatusOK, "tables", page{Title: "Mesa " + strconv.Itoa(id), Data: s.floor.View(id)})
}

func (s *Server) handleTickets(w http.ResponseWriter, r *http.Request) {
	view := s.tickets.View(r.URL.Query().Get("q"))
	s.render(w, r, http.StatusOK, "tickets", page{Title: "Comandas", Data: view})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "settings", page{Title: "Configurações"})
}
