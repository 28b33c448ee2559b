package devapi

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"linkeats/console/internal/model"
)

var (
	errNotFound     = errors.New("not found")
	errConflict     = errors.New("conflict")
	errInvalidLogin = errors.New("invalid credentials")
	errInvalidCode  = errors.New("invalid code")
)

type account struct {
	user         model.User
	passwordHash []byte
	// professional accounts log in with the "user" key, admins with "client".
	professional bool
	position     string
	phone        string
}

type resetCode struct {
	code      string
	expiresAt time.Time
}

// Store is the in-memory data set behind the development API. Every record
// belongs to one company.
type Store struct {
	mu sync.Mutex

	nextID        int64
	admins        map[int64]*account
	clients       map[int64]model.Client
	products      map[int64]model.Product
	professionals map[int64]*account
	resetCodes    map[string]resetCode

	resetTTL time.Duration
	now      func() time.Time
}

func NewStore(resetTTL time.Duration) *Store {
	if resetTTL <= 0 {
		resetTTL = 10 * time.Minute
	}
	return &Store{
		admins:        make(map[int64]*account),
		clients:       make(map[int64]model.Client),
		products:      make(map[int64]model.Product),
		professionals: make(map[int64]*account),
		resetCodes:    make(map[string]resetCode),
		resetTTL:      resetTTL,
		now:           time.Now,
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// AddAdmin registers an account that logs in with the "client" response key.
func (s *Store) AddAdmin(companyID int64, name, email, password string) (model.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTakenLocked(email, 0) {
		return model.User{}, errConflict
	}
	now := s.timestamp()
	user := model.User{
		ID:        s.id(),
		Name:      name,
		Email:     normalizeEmail(email),
		CompanyID: companyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.admins[user.ID] = &account{user: user, passwordHash: hash}
	return user, nil
}

func (s *Store) emailTakenLocked(email string, exceptID int64) bool {
	email = normalizeEmail(email)
	for id, acc := range s.admins {
		if id != exceptID && acc.user.Email == email {
			return true
		}
	}
	for id, acc := range s.professionals {
		if id != exceptID && acc.user.Email == email {
			return true
		}
	}
	return false
}

func (s *Store) accountByEmailLocked(email string) *account {
	email = normalizeEmail(email)
	for _, acc := range s.admins {
		if acc.user.Email == email {
			return acc
		}
	}
	for _, acc := range s.professionals {
		if acc.user.Email == email {
			return acc
		}
	}
	return nil
}

// Authenticate checks credentials against admins and professionals.
func (s *Store) Authenticate(email, password string) (model.User, bool, error) {
	s.mu.Lock()
	acc := s.accountByEmailLocked(email)
	var (
		user         model.User
		hash         []byte
		professional bool
	)
	if acc != nil {
		user, hash, professional = acc.user, acc.passwordHash, acc.professional
	}
	s.mu.Unlock()

	if acc == nil {
		return model.User{}, false, errInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return model.User{}, false, errInvalidLogin
	}
	return user, professional, nil
}

// IssueResetCode stores a fresh six-digit code for email. Unknown emails get
// errNotFound.
func (s *Store) IssueResetCode(email string) (string, error) {
	code, err := randomCode(6)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountByEmailLocked(email) == nil {
		return "", errNotFound
	}
	s.resetCodes[normalizeEmail(email)] = resetCode{code: code, expiresAt: s.now().Add(s.resetTTL)}
	return code, nil
}

// ResetCode returns the pending code for email, if any.
func (s *Store) ResetCode(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rc, ok := s.resetCodes[normalizeEmail(email)]
	if !ok || s.now().After(rc.expiresAt) {
		return "", false
	}
	return rc.code, true
}

func (s *Store) checkCodeLocked(email, code string) error {
	rc, ok := s.resetCodes[normalizeEmail(email)]
	if !ok || rc.code != code || s.now().After(rc.expiresAt) {
		return errInvalidCode
	}
	return nil
}

func (s *Store) VerifyResetCode(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkCodeLocked(email, code)
}

// ResetPassword consumes the code and replaces the account password.
func (s *Store) ResetPassword(email, code, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCodeLocked(email, code); err != nil {
		return err
	}
	acc := s.accountByEmailLocked(email)
	if acc == nil {
		return errNotFound
	}
	acc.passwordHash = hash
	acc.user.UpdatedAt = s.timestamp()
	delete(s.resetCodes, normalizeEmail(email))
	return nil
}

// Clients

func (s *Store) ListClients(companyID int64, term string) []model.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Client{}
	for _, c := range s.clients {
		if c.CompanyID != companyID {
			continue
		}
		if !matchesTerm(term, c.Name, c.Email, c.Phone, deref(c.Document)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) GetClient(companyID, id int64) (model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok || c.CompanyID != companyID {
		return model.Client{}, errNotFound
	}
	return c, nil
}

func (s *Store) FindClient(companyID int64, match func(model.Client) bool) (model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.CompanyID == companyID && match(c) {
			return c, nil
		}
	}
	return model.Client{}, errNotFound
}

func (s *Store) CreateClient(companyID int64, dto model.CreateClientDTO) model.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.timestamp()
	c := model.Client{
		ID:        s.id(),
		Name:      dto.Name,
		Phone:     dto.Phone,
		Address:   dto.Address,
		Document:  dto.Document,
		Email:     dto.Email,
		CompanyID: companyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.clients[c.ID] = c
	return c
}

func (s *Store) UpdateClient(companyID, id int64, dto model.UpdateClientDTO) (model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok || c.CompanyID != companyID {
		return model.Client{}, errNotFound
	}
	assign(&c.Name, dto.Name)
	assign(&c.Phone, dto.Phone)
	assign(&c.Address, dto.Address)
	assign(&c.Email, dto.Email)
	if dto.Document != nil {
		c.Document = dto.Document
	}
	c.UpdatedAt = s.timestamp()
	s.clients[id] = c
	return c, nil
}

func (s *Store) DeleteClient(companyID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok || c.CompanyID != companyID {
		return errNotFound
	}
	delete(s.clients, id)
	return nil
}

// Products

func (s *Store) ListProducts(companyID int64, term, category string) []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Product{}
	for _, p := range s.products {
		if p.CompanyID != companyID {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if !matchesTerm(term, p.Name, p.Category, deref(p.Notes)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ProductCategories(companyID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range s.products {
		if p.CompanyID != companyID {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

func (s *Store) GetProduct(companyID, id int64) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.CompanyID != companyID {
		return model.Product{}, errNotFound
	}
	return p, nil
}

func (s *Store) CreateProduct(companyID int64, dto model.CreateProductDTO) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.timestamp()
	p := model.Product{
		ID:        s.id(),
		Name:      dto.Name,
		Price:     dto.Price,
		Category:  dto.Category,
		Notes:     dto.Notes,
		CompanyID: companyID,
		CreatedAt: now,
		UpdatedAt: now,
		Photos:    []model.ProductPhoto{},
	}
	if dto.Size != nil {
		p.Size = *dto.Size
	}
	s.products[p.ID] = p
	return p
}

func (s *Store) UpdateProduct(companyID, id int64, dto model.UpdateProductDTO) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.CompanyID != companyID {
		return model.Product{}, errNotFound
	}
	assign(&p.Name, dto.Name)
	assign(&p.Category, dto.Category)
	if dto.Price != nil {
		p.Price = *dto.Price
	}
	if dto.Notes != nil {
		p.Notes = dto.Notes
	}
	if dto.Size != nil {
		p.Size = *dto.Size
	}
	p.UpdatedAt = s.timestamp()
	s.products[id] = p
	return p, nil
}

func (s *Store) DeleteProduct(companyID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.CompanyID != companyID {
		return errNotFound
	}
	delete(s.products, id)
	return nil
}

// Professionals

func (a *account) asProfessional() model.Professional {
	return model.Professional{
		ID:          a.user.ID,
		Name:        a.user.Name,
		Email:       a.user.Email,
		Position:    a.position,
		PhoneNumber: a.phone,
		CompanyID:   a.user.CompanyID,
		CreatedAt:   a.user.CreatedAt,
		UpdatedAt:   a.user.UpdatedAt,
	}
}

func (s *Store) ListProfessionals(companyID int64, term string) []model.Professional {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Professional{}
	for _, acc := range s.professionals {
		if acc.user.CompanyID != companyID {
			continue
		}
		p := acc.asProfessional()
		if !matchesTerm(term, p.Name, p.Email, p.Position, p.PhoneNumber) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) GetProfessional(companyID, id int64) (model.Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.professionals[id]
	if !ok || acc.user.CompanyID != companyID {
		return model.Professional{}, errNotFound
	}
	return acc.asProfessional(), nil
}

func (s *Store) CreateProfessional(companyID int64, dto model.CreateProfessionalDTO) (model.Professional, error) {
	hash, err := hashPassword(dto.Password)
	if err != nil {
		return model.Professional{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTakenLocked(dto.Email, 0) {
		return model.Professional{}, errConflict
	}
	now := s.timestamp()
	acc := &account{
		user: model.User{
			ID:        s.id(),
			Name:      dto.Name,
			Email:     normalizeEmail(dto.Email),
			Phone:     dto.PhoneNumber,
			CompanyID: companyID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		passwordHash: hash,
		professional: true,
		position:     dto.Position,
		phone:        deref(dto.PhoneNumber),
	}
	s.professionals[acc.user.ID] = acc
	return acc.asProfessional(), nil
}

func (s *Store) UpdateProfessional(companyID, id int64, dto model.UpdateProfessionalDTO) (model.Professional, error) {
	var hash []byte
	if dto.Password != nil {
		h, err := hashPassword(*dto.Password)
		if err != nil {
			return model.Professional{}, err
		}
		hash = h
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.professionals[id]
	if !ok || acc.user.CompanyID != companyID {
		return model.Professional{}, errNotFound
	}
	if dto.Email != nil && s.emailTakenLocked(*dto.Email, id) {
		return model.Professional{}, errConflict
	}
	assign(&acc.user.Name, dto.Name)
	if dto.Email != nil {
		acc.user.Email = normalizeEmail(*dto.Email)
	}
	assign(&acc.position, dto.Position)
	if dto.PhoneNumber != nil {
		acc.phone = *dto.PhoneNumber
		acc.user.Phone = model.StringPtr(acc.phone)
	}
	if hash != nil {
		acc.passwordHash = hash
	}
	acc.user.UpdatedAt = s.timestamp()
	return acc.asProfessional(), nil
}

func (s *Store) DeleteProfessional(companyID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.professionals[id]
	if !ok || acc.user.CompanyID != companyID {
		return errNotFound
	}
	delete(s.professionals, id)
	return nil
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func matchesTerm(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func randomCode(digits int) (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < digits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}
