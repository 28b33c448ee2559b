package devapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linkeats/console/internal/config"
	"linkeats/console/internal/model"
)

// Server serves the LinkEats REST endpoints the console consumes, backed by
// an in-memory Store.
type Server struct {
	cfg    config.DevAPIConfig
	store  *Store
	logger *slog.Logger

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewServer(cfg config.DevAPIConfig, store *Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		revoked: make(map[string]time.Time),
	}
}

// Seed creates the configured admin account for the seed company.
func Seed(store *Store, cfg config.DevAPIConfig) (model.User, error) {
	return store.AddAdmin(cfg.SeedCompanyID, "Administrador", cfg.SeedAdminEmail, cfg.SeedAdminPass)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/sessions", s.handleLogin)
	r.With(s.authMiddleware).Delete("/sessions", s.handleLogout)
	r.Post("/sessions/request-password-reset", s.handleRequestPasswordReset)
	r.Post("/sessions/verify-code", s.handleVerifyCode)
	r.Post("/sessions/reset-password", s.handleResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware, s.tenantMiddleware)

		r.Get("/clients", s.handleListClients)
		r.Post("/clients", s.handleCreateClient)
		r.Get("/clients/document/{document}", s.handleGetClientByDocument)
		r.Get("/clients/phone/{phone}", s.handleGetClientByPhone)
		r.Get("/clients/{id}", s.handleGetClient)
		r.Put("/clients/{id}", s.handleUpdateClient)
		r.Delete("/clients/{id}", s.handleDeleteClient)

		r.Get("/products", s.handleListProducts)
		r.Post("/products", s.handleCreateProduct)
		r.Get("/products/categories", s.handleProductCategories)
		r.Get("/products/{id}", s.handleGetProduct)
		r.Put("/products/{id}", s.handleUpdateProduct)
		r.Delete("/products/{id}", s.handleDeleteProduct)

		r.Get("/professionals", s.handleListProfessionals)
		r.Post("/professionals", s.handleCreateProfessional)
		r.Get("/professionals/{id}", s.handleGetProfessional)
		r.Put("/professionals/{id}", s.handleUpdateProfessional)
		r.Delete("/professionals/{id}", s.handleDeleteProfessional)
	})

	return r
}

// Sessions

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Client *model.User `json:"client,omitempty"`
	User   *model.User `json:"user,omitempty"`
	Token  string      `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email e senha são obrigatórios")
		return
	}

	user, professional, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Credenciais inválidas")
		return
	}
	token, err := NewSessionToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.TokenTTL, user.ID, user.CompanyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Erro ao gerar token")
		return
	}

	resp := loginResponse{Token: token}
	if professional {
		resp.User = &user
	} else {
		resp.Client = &user
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	s.mu.Lock()
	s.revoked[claims.ID] = claims.ExpiresAt.Time
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type emailRequest struct {
	Email string `json:"email"`
}

type codeRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "Email é obrigatório")
		return
	}
	code, err := s.store.IssueResetCode(req.Email)
	if err != nil {
		if errors.Is(err, errNotFound) {
			writeError(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		writeError(w, http.StatusInternalServerError, "Erro ao gerar código")
		return
	}
	s.logger.Info("password reset code issued",
		slog.String("email", normalizeEmail(req.Email)),
		slog.String("code", code),
	)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Código de recuperação enviado para o email"})
}

func (s *Server) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "Email e código são obrigatórios")
		return
	}
	if err := s.store.VerifyResetCode(req.Email, req.Code); err != nil {
		writeError(w, http.StatusBadRequest, "Código inválido ou expirado")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Código válido"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Code == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Email, código e nova senha são obrigatórios")
		return
	}
	if len(req.NewPassword) < 6 {
		writeError(w, http.StatusBadRequest, "A senha deve ter pelo menos 6 caracteres")
		return
	}
	if err := s.store.ResetPassword(req.Email, req.Code, req.NewPassword); err != nil {
		if errors.Is(err, errInvalidCode) {
			writeError(w, http.StatusBadRequest, "Código inválido ou expirado")
			return
		}
		writeError(w, http.StatusInternalServerError, "Erro ao resetar senha")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Senha alterada com sucesso"})
}

// Clients

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListClients(tenantFromContext(r.Context()), r.URL.Query().Get("term")))
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	client, err := s.store.GetClient(tenantFromContext(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) handleGetClientByDocument(w http.ResponseWriter, r *http.Request) {
	document := chi.URLParam(r, "document")
	client, err := s.store.FindClient(tenantFromContext(r.Context()), func(c model.Client) bool {
		return c.Document != nil && *c.Document == document
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) handleGetClientByPhone(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	client, err := s.store.FindClient(tenantFromContext(r.Context()), func(c model.Client) bool {
		return c.Phone == phone
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req model.CreateClientDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	if blank(req.Name, req.Phone, req.Email, req.Address) {
		writeError(w, http.StatusBadRequest, "Nome, telefone, email e endereço são obrigatórios")
		return
	}
	writeJSON(w, http.StatusCreated, s.store.CreateClient(tenantFromContext(r.Context()), req))
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req model.UpdateClientDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	client, err := s.store.UpdateClient(tenantFromContext(r.Context()), id, req)
	if err != nil {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Cliente atualizado com sucesso",
		"client":  client,
	})
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteClient(tenantFromContext(r.Context()), id); err != nil {
		writeError(w, http.StatusNotFound, "Cliente não encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Products

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	writeJSON(w, http.StatusOK, s.store.ListProducts(tenantFromContext(r.Context()), query.Get("term"), query.Get("category")))
}

func (s *Server) handleProductCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ProductCategories(tenantFromContext(r.Context())))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := s.store.GetProduct(tenantFromContext(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Produto não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	if blank(req.Name, req.Category) {
		writeError(w, http.StatusBadRequest, "Nome e categoria são obrigatórios")
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "O preço deve ser maior que zero")
		return
	}
	writeJSON(w, http.StatusCreated, s.store.CreateProduct(tenantFromContext(r.Context()), req))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req model.UpdateProductDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	if req.Price != nil && *req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "O preço deve ser maior que zero")
		return
	}
	product, err := s.store.UpdateProduct(tenantFromContext(r.Context()), id, req)
	if err != nil {
		writeError(w, http.StatusNotFound, "Produto não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Produto atualizado com sucesso",
		"product": product,
	})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteProduct(tenantFromContext(r.Context()), id); err != nil {
		writeError(w, http.StatusNotFound, "Produto não encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Professionals

func (s *Server) handleListProfessionals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListProfessionals(tenantFromContext(r.Context()), r.URL.Query().Get("term")))
}

func (s *Server) handleGetProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	professional, err := s.store.GetProfessional(tenantFromContext(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Profissional não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, professional)
}

func (s *Server) handleCreateProfessional(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProfessionalDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	if blank(req.Name, req.Email, req.Password, req.Position) {
		writeError(w, http.StatusBadRequest, "Nome, email, senha e cargo são obrigatórios")
		return
	}
	professional, err := s.store.CreateProfessional(tenantFromContext(r.Context()), req)
	if err != nil {
		if errors.Is(err, errConflict) {
			writeError(w, http.StatusConflict, "Email já cadastrado")
			return
		}
		writeError(w, http.StatusInternalServerError, "Erro ao criar profissional")
		return
	}
	writeJSON(w, http.StatusCreated, professional)
}

func (s *Server) handleUpdateProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req model.UpdateProfessionalDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida")
		return
	}
	if req.Password != nil && *req.Password == "" {
		writeError(w, http.StatusBadRequest, "A senha não pode ser vazia")
		return
	}
	professional, err := s.store.UpdateProfessional(tenantFromContext(r.Context()), id, req)
	if err != nil {
		switch {
		case errors.Is(err, errNotFound):
			writeError(w, http.StatusNotFound, "Profissional não encontrado")
		case errors.Is(err, errConflict):
			writeError(w, http.StatusConflict, "Email já cadastrado")
		default:
			writeError(w, http.StatusInternalServerError, "Erro ao atualizar profissional")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profissional atualizado com sucesso",
		"user":    professional,
	})
}

func (s *Server) handleDeleteProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteProfessional(tenantFromContext(r.Context()), id); err != nil {
		writeError(w, http.StatusNotFound, "Profissional não encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Auth

type claimsKey struct{}

type tenantKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Token não informado")
			return
		}
		claims, err := ParseSessionToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil || s.isRevoked(claims.ID) {
			writeError(w, http.StatusUnauthorized, "Token inválido")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tenantMiddleware requires the company_id header and pins it to the company
// of the token holder.
func (s *Server) tenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("company_id"))
		companyID, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil || companyID <= 0 {
			writeError(w, http.StatusBadRequest, "company_id é obrigatório")
			return
		}
		if claims := claimsFromContext(r.Context()); claims == nil || claims.CompanyID != companyID {
			writeError(w, http.StatusForbidden, "Acesso negado")
			return
		}
		ctx := context.WithValue(r.Context(), tenantKey{}, companyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) isRevoked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for jti, expiresAt := range s.revoked {
		if now.After(expiresAt) {
			delete(s.revoked, jti)
		}
	}
	_, ok := s.revoked[id]
	return ok
}

func claimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims
}

func tenantFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(tenantKey{}).(int64)
	return id
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "ID inválido")
		return 0, false
	}
	return id, true
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
