package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"portfolio/internal/model"
	"portfolio/pkg/apperr"
)

type ServiceInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Features    []string `json:"features"`
	Color       string   `json:"color"`
	Popular     *bool    `json:"popular"`
	Order       *int     `json:"order"`
	Active      *bool    `json:"active"`
}

// immutableServiceFields are dropped from merge updates.
var immutableServiceFields = []string{"_id", "id", "createdAt"}

// CatalogService manages the Service entities shown on the public site.
type CatalogService struct {
	services ServiceStore
	now      func() time.Time
}

func NewCatalogService(services ServiceStore) *CatalogService {
	return &CatalogService{services: services, now: time.Now}
}

// ListActive returns active services in display order.
func (s *CatalogService) ListActive(ctx context.Context) ([]model.Service, error) {
	services, err := s.services.Find(ctx, true)
	if err != nil {
		return nil, storeErr(err, "service not found")
	}
	return nonNilServices(services), nil
}

// ListAll returns every service in display order.
func (s *CatalogService) ListAll(ctx context.Context) ([]model.Service, error) {
	services, err := s.services.Find(ctx, false)
	if err != nil {
		return nil, storeErr(err, "service not found")
	}
	return nonNilServices(services), nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*model.Service, error) {
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, apperr.NotFound("service not found")
	}
	svc, err := s.services.FindByID(ctx, oid)
	if err != nil {
		return nil, storeErr(err, "service not found")
	}
	return svc, nil
}

// Create stores a new service. Without an explicit order it goes one past
// the current maximum, or 0 for the first service. Two concurrent creates
// can end up sharing an order.
func (s *CatalogService) Create(ctx context.Context, in ServiceInput) (*model.Service, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" || strings.TrimSpace(in.Icon) == "" {
		return nil, apperr.Required("title", "description", "icon")
	}

	now := s.now().UTC()
	svc := &model.Service{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Icon:        in.Icon,
		Features:    nonNil(in.Features),
		Color:       in.Color,
		Popular:     false,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Popular != nil {
		svc.Popular = *in.Popular
	}
	if in.Active != nil {
		svc.Active = *in.Active
	}

	if in.Order != nil {
		svc.Order = *in.Order
	} else {
		max, ok, err := s.services.MaxOrder(ctx)
		if err != nil {
			return nil, storeErr(err, "service not found")
		}
		if ok {
			svc.Order = max + 1
		}
	}

	if err := s.services.Insert(ctx, svc); err != nil {
		return nil, storeErr(err, "service not found")
	}
	return svc, nil
}

// Update merges the whole body into the stored document. Known fields must
// carry their schema type; unknown ones pass through as given. Identity and
// creation time are never overwritten.
func (s *CatalogService) Update(ctx context.Context, id string, body map[string]any) (*model.Service, error) {
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, apperr.NotFound("service not found")
	}

	fields := make(map[string]any, len(body)+1)
	for k, v := range body {
		if k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
			return nil, apperr.Validation("invalid field name")
		}
		v = normalizeJSON(v)
		if err := checkServiceField(k, v); err != nil {
			return nil, err
		}
		fields[k] = v
	}
	for _, k := range immutableServiceFields {
		delete(fields, k)
	}
	fields["updatedAt"] = s.now().UTC()

	svc, err := s.services.Merge(ctx, oid, fields)
	if err != nil {
		return nil, storeErr(err, "service not found")
	}
	return svc, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	oid, ok := model.ParseID(id)
	if !ok {
		return apperr.NotFound("service not found")
	}
	if err := s.services.Delete(ctx, oid); err != nil {
		return storeErr(err, "service not found")
	}
	return nil
}

// checkServiceField rejects values a known field could not be decoded from
// once stored.
func checkServiceField(k string, v any) error {
	ok := true
	switch k {
	case "title", "description", "icon", "color":
		_, ok = v.(string)
	case "popular", "active":
		_, ok = v.(bool)
	case "order":
		_, ok = v.(int64)
	case "features":
		list, isList := v.([]any)
		ok = isList || v == nil
		for _, item := range list {
			if _, isString := item.(string); !isString {
				ok = false
				break
			}
		}
	}
	if !ok {
		return apperr.Validation("invalid " + k)
	}
	return nil
}

// normalizeJSON turns json.Number values into int64 when integral and
// float64 otherwise, so merged numbers keep their natural store type.
func normalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeJSON(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = normalizeJSON(vv)
		}
		return out
	}
	return v
}

func nonNilServices(s []model.Service) []model.Service {
	if s == nil {
		return []model.Service{}
	}
	return s
}
