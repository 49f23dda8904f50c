// Package service contains the business logic for the transit map API.
// Services validate inputs, enforce business rules, and turn requests into
// store actions. They never touch the map engine; the view host does.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pkordes/transit-map/backend/internal/domain"
	"github.com/pkordes/transit-map/backend/internal/store"
)

// LineStore is the part of the state store the service depends on.
// *store.Store satisfies it. Dispatch reports whether the state changed.
type LineStore interface {
	Dispatch(a store.Action) bool
	State() store.State
}

// LineService implements business logic for Line operations.
type LineService struct {
	store LineStore
}

// NewLineService constructs a LineService backed by the provided store.
func NewLineService(st LineStore) *LineService {
	return &LineService{store: st}
}

// Add validates line and dispatches AddLine. An empty ID is replaced by a
// random UUID; an existing ID replaces that line.
// Returns domain.ErrValidation if input violates business rules.
func (s *LineService) Add(ctx context.Context, line domain.Line) (domain.Line, error) {
	line.Name = strings.TrimSpace(line.Name)
	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	if err := ValidateLine(line); err != nil {
		return domain.Line{}, err
	}
	s.store.Dispatch(store.AddLine{Line: line})
	return line, nil
}

// List returns every line ordered by id.
// Always returns a non-nil slice so callers can safely range over it.
func (s *LineService) List(ctx context.Context) ([]domain.Line, error) {
	return store.AllLines(s.store.State()), nil
}

// Get returns a single line by id.
// Returns domain.ErrNotFound if no line with that id exists.
func (s *LineService) Get(ctx context.Context, id string) (domain.Line, error) {
	line, ok := s.store.State().Line(id)
	if !ok {
		return domain.Line{}, fmt.Errorf("service.LineService.Get: %w", domain.ErrNotFound)
	}
	return line, nil
}

// Remove dispatches RemoveLine.
// Returns domain.ErrNotFound if no line with that id exists. The check is
// the dispatch itself, so of two concurrent removals only one succeeds.
func (s *LineService) Remove(ctx context.Context, id string) error {
	if !s.store.Dispatch(store.RemoveLine{ID: id}) {
		return fmt.Errorf("service.LineService.Remove: %w", domain.ErrNotFound)
	}
	return nil
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateLine enforces the rules every stored line must satisfy.
//   - Name must be non-empty; at least one stop is required.
//   - Every stop needs an id and a name.
//   - Coordinates must be valid WGS84 latitude/longitude.
//
// Only the first violation is reported.
func ValidateLine(line domain.Line) error {
	err := validate.Struct(line)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, describe(verrs[0]))
}

// describe renders a field error as "<json path> <problem>".
func describe(fe validator.FieldError) string {
	_, field, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		field = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must have at least " + fe.Param() + " item(s)"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "latitude":
		return field + " must be a valid latitude"
	case "longitude":
		return field + " must be a valid longitude"
	case "hexcolor":
		return field + " must be a hex colour such as #f3791d"
	default:
		return field + " failed " + fe.Tag() + " validation"
	}
}
