package validate

import "testing"

type sample struct {
	Email string `validate:"required,email"`
	Qty   int    `validate:"required,min=1"`
}

func TestValidate_Passes(t *testing.T) {
	v := New()
	if err := v.Validate(sample{Email: "a@b.com", Qty: 2}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_Fails(t *testing.T) {
	v := New()
	if err := v.Validate(sample{Email: "not-an-email", Qty: 0}); err == nil {
		t.Error("expected validation error")
	}
}
