package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// InquiryType описывает источник обращения клиента.
type InquiryType string

const (
	// InquiryTypeContactForm: обращение через форму обратной связи.
	InquiryTypeContactForm InquiryType = "contact_form"
)

// SubscriptionStatus описывает состояние подписки на рассылку.
type SubscriptionStatus string

const (
	// SubscriptionStatusActive: подписка действует.
	SubscriptionStatusActive SubscriptionStatus = "active"
)

// CustomerInquiry: обращение из формы обратной связи.
type CustomerInquiry struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,storefront_email"`
	// Phone необязателен, пустая строка допустима.
	Phone          string      `json:"phone"`
	Message        string      `json:"message" validate:"required"`
	SubmissionDate time.Time   `json:"submissionDate"`
	Type           InquiryType `json:"type"`
}

// InquiryInput: сырые значения полей формы.
type InquiryInput struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// NewCustomerInquiry обрезает пробелы и проверяет обязательные поля и формат email.
func NewCustomerInquiry(in InquiryInput, now time.Time) (CustomerInquiry, error) {
	inquiry := CustomerInquiry{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		Message:        strings.TrimSpace(in.Message),
		SubmissionDate: now.UTC(),
		Type:           InquiryTypeContactForm,
	}
	if err := validate(inquiry); err != nil {
		return CustomerInquiry{}, err
	}
	return inquiry, nil
}

// Subscription: подписка на рассылку. Email уникален в пределах списка.
type Subscription struct {
	Email         string             `json:"email" validate:"required,storefront_email"`
	SubscribeDate time.Time          `json:"subscribeDate"`
	Status        SubscriptionStatus `json:"status"`
}

// NewSubscription создаёт активную подписку для проверенного email.
func NewSubscription(email string, now time.Time) (Subscription, error) {
	sub := Subscription{
		Email:         strings.TrimSpace(email),
		SubscribeDate: now.UTC(),
		Status:        SubscriptionStatusActive,
	}
	if err := validate(sub); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}
