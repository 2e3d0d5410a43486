package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
)

func TestNewCustomerInquiry_TrimsAndFills(t *testing.T) {
	now := time.Now()
	inquiry, err := domain.NewCustomerInquiry(domain.InquiryInput{
		Name:    "  Ada Lovelace ",
		Email:   " ada@example.com ",
		Message: " Do you stock first editions? ",
	}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inquiry.Name != "Ada Lovelace" || inquiry.Email != "ada@example.com" {
		t.Fatalf("fields were not trimmed: %+v", inquiry)
	}
	if inquiry.Phone != "" {
		t.Fatalf("expected empty optional phone, got %q", inquiry.Phone)
	}
	if inquiry.Type != domain.InquiryTypeContactForm {
		t.Fatalf("unexpected type %s", inquiry.Type)
	}
	if inquiry.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestNewCustomerInquiry_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   domain.InquiryInput
		want error
	}{
		{
			name: "missing name",
			in:   domain.InquiryInput{Email: "a@b.co", Message: "hi"},
			want: domain.ErrNameRequired,
		},
		{
			name: "blank email",
			in:   domain.InquiryInput{Name: "A", Email: "   ", Message: "hi"},
			want: domain.ErrEmailRequired,
		},
		{
			name: "missing message",
			in:   domain.InquiryInput{Name: "A", Email: "a@b.co"},
			want: domain.ErrMessageRequired,
		},
		{
			name: "malformed email",
			in:   domain.InquiryInput{Name: "A", Email: "a@b", Message: "hi"},
			want: domain.ErrEmailInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.NewCustomerInquiry(tc.in, time.Now())
			if !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNewSubscription(t *testing.T) {
	sub, err := domain.NewSubscription(" reader@example.com ", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Email != "reader@example.com" || sub.Status != domain.SubscriptionStatusActive {
		t.Fatalf("unexpected subscription: %+v", sub)
	}

	_, err = domain.NewSubscription("", time.Now())
	if !errors.Is(err, domain.ErrEmailRequired) {
		t.Fatalf("expected ErrEmailRequired, got %v", err)
	}
	if !domain.MissingRequired(err) {
		t.Fatal("expected MissingRequired to classify empty email")
	}

	_, err = domain.NewSubscription("with space@example.com", time.Now())
	if !errors.Is(err, domain.ErrEmailInvalid) {
		t.Fatalf("expected ErrEmailInvalid, got %v", err)
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last@shop.example.org"}
	invalid := []string{"", "plain", "a@b", "@b.co", "a b@c.de", "a@@b.co"}

	for _, e := range valid {
		if !domain.IsValidEmail(e) {
			t.Errorf("expected %q to be valid", e)
		}
	}
	for _, e := range invalid {
		if domain.IsValidEmail(e) {
			t.Errorf("expected %q to be invalid", e)
		}
	}
}
