package validate_test

import (
	"errors"
	"testing"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/pkg/validate"
)

func validRequest() *domain.NewOrderRequest {
	return &domain.NewOrderRequest{
		CustomerName: "John Smith",
		Items:        []domain.Item{{Name: "widget", Quantity: 1}},
	}
}

func TestNewOrder_Valid(t *testing.T) {
	t.Parallel()

	if err := validate.NewOrder(validRequest()); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestNewOrder_Invalid(t *testing.T) {
	t.Parallel()

	cases := map[string]*domain.NewOrderRequest{
		"nil request": nil,
		"empty customer": {
			Items: []domain.Item{{Name: "widget", Quantity: 1}},
		},
		"no items": {
			CustomerName: "John",
			Items:        nil,
		},
		"item without name": {
			CustomerName: "John",
			Items:        []domain.Item{{Quantity: 1}},
		},
		"zero quantity": {
			CustomerName: "John",
			Items:        []domain.Item{{Name: "widget", Quantity: 0}},
		},
		"negative quantity": {
			CustomerName: "John",
			Items:        []domain.Item{{Name: "widget", Quantity: -2}},
		},
	}

	for name, req := range cases {
		err := validate.NewOrder(req)
		if !errors.Is(err, validate.ErrInvalidInput) {
			t.Fatalf("%s: want ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	if err := validate.Status("shipped"); err != nil {
		t.Fatalf("valid status rejected: %v", err)
	}
	if err := validate.Status(""); !errors.Is(err, validate.ErrInvalidInput) {
		t.Fatalf("empty status: want ErrInvalidInput, got %v", err)
	}
}
