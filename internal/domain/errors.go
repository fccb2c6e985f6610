package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential     = errors.New("authorization header is missing")
	ErrInvalidCredential     = errors.New("invalid session token")
	ErrUnknownShop           = errors.New("shop not found")
	ErrInvalidShopDomain     = errors.New("shop domain must match 'example.myshopify.com'")
	ErrInvalidCallbackParams = errors.New("invalid callback parameters")
	ErrMalformedPayload      = errors.New("malformed payload")
	ErrInvalidSignature      = errors.New("invalid webhook signature")
	ErrUpstreamFailure       = errors.New("shopify API request failed")
	ErrInternalFailure       = errors.New("internal server error")

	// ErrDuplicateEvent signals a webhook delivery that was already processed.
	// Callers treat it as success.
	ErrDuplicateEvent = errors.New("duplicate webhook event")
)

// UpstreamError wraps a failure returned by the Shopify API
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("shopify %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is makes every UpstreamError match ErrUpstreamFailure
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamFailure
}

// NewUpstreamError wraps err as a Shopify API failure; nil stays nil
func NewUpstreamError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Op: op, Err: err}
}

// PayloadError names a required payload field that was absent or unusable
type PayloadError struct {
	Field string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedPayload, e.Field)
}

func (e *PayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}

// MissingField reports a required payload field that was absent or unusable
func MissingField(field string) error {
	return &PayloadError{Field: field}
}
