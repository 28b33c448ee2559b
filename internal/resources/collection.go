package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"linkeats/console/internal/api"
)

var (
	ErrNotFound = errors.New("resource not found")
	ErrNoTenant = errors.New("no tenant in session")
)

// Doer is the part of the API gateway used by resource services.
type Doer interface {
	Do(ctx context.Context, req api.Request, out interface{}) error
}

// collection is the CRUD pattern shared by every resource kind. T is the
// entity, C the create payload and U the partial update payload.
type collection[T, C, U any] struct {
	api      Doer
	path     string
	envelope string
	label    string
}

func (c collection[T, C, U]) request(ctx context.Context, op, method, path string) (api.Request, error) {
	creds, _ := api.CredentialsFromContext(ctx)
	if creds.TenantID == "" {
		return api.Request{}, ErrNoTenant
	}
	return api.Request{
		Operation: c.label + "_" + op,
		Method:    method,
		Path:      path,
		Token:     creds.Token,
		TenantID:  creds.TenantID,
	}, nil
}

func (c collection[T, C, U]) itemPath(id int64) string {
	return c.path + "/" + strconv.FormatInt(id, 10)
}

func (c collection[T, C, U]) list(ctx context.Context, query url.Values) ([]T, error) {
	req, err := c.request(ctx, "list", http.MethodGet, c.path)
	if err != nil {
		return nil, err
	}
	req.Query = query
	var out []T
	if err := c.api.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (c collection[T, C, U]) get(ctx context.Context, path string) (T, error) {
	var out T
	req, err := c.request(ctx, "get", http.MethodGet, path)
	if err != nil {
		return out, err
	}
	if err := c.api.Do(ctx, req, &out); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return out, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return out, err
	}
	return out, nil
}

func (c collection[T, C, U]) create(ctx context.Context, dto C) (T, error) {
	var out T
	req, err := c.request(ctx, "create", http.MethodPost, c.path)
	if err != nil {
		return out, err
	}
	req.Body = dto
	if err := c.api.Do(ctx, req, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (c collection[T, C, U]) update(ctx context.Context, id int64, dto U) (T, error) {
	var out T
	req, err := c.request(ctx, "update", http.MethodPut, c.itemPath(id))
	if err != nil {
		return out, err
	}
	req.Body = dto
	var raw json.RawMessage
	if err := c.api.Do(ctx, req, &raw); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return out, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return out, err
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := api.Unwrap(raw, c.envelope, &out); err != nil {
		return out, fmt.Errorf("decode %s update: %w", c.label, err)
	}
	return out, nil
}

func (c collection[T, C, U]) delete(ctx context.Context, id int64) error {
	req, err := c.request(ctx, "delete", http.MethodDelete, c.itemPath(id))
	if err != nil {
		return err
	}
	if err := c.api.Do(ctx, req, nil); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return err
	}
	return nil
}

func termQuery(term string) url.Values {
	query := url.Values{}
	if term != "" {
		query.Set("term", term)
	}
	return query
}
