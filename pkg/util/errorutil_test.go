package util_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/spec-kit/careteam-transfer/pkg/util"
)

func TestErrorConstructorsCarryCodes(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{apperrors.NewConfigurationError("bad scope", nil), "CONFIGURATION_ERROR", http.StatusUnprocessableEntity},
		{apperrors.NewResolutionError("no counterpart", nil), "RESOLUTION_ERROR", http.StatusConflict},
		{apperrors.NewTransferConflict("already moved", nil), "TRANSFER_CONFLICT", http.StatusConflict},
		{apperrors.NewStoreError(errors.New("down")), "STORE_ERROR", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		domainErr := apperrors.ToDomainError(tc.err)
		if domainErr.Code != tc.code {
			t.Errorf("code = %s, want %s", domainErr.Code, tc.code)
		}
		if domainErr.HTTPStatus != tc.status {
			t.Errorf("%s: status = %d, want %d", tc.code, domainErr.HTTPStatus, tc.status)
		}
		if !apperrors.IsCode(tc.err, tc.code) {
			t.Errorf("IsCode(%s) = false", tc.code)
		}
	}
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	domainErr := apperrors.ToDomainError(pgx.ErrNoRows)
	if domainErr.Code != "NOT_FOUND" {
		t.Fatalf("code = %s, want NOT_FOUND", domainErr.Code)
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("boom")
	domainErr := apperrors.ToDomainError(cause)
	if domainErr.Code != "INTERNAL_ERROR" {
		t.Fatalf("code = %s, want INTERNAL_ERROR", domainErr.Code)
	}
	if !errors.Is(domainErr, cause) {
		t.Fatal("cause not wrapped")
	}
}

func TestStoreErrorUnwraps(t *testing.T) {
	cause := errors.New("constraint violation")
	err := apperrors.NewStoreError(cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected StoreError to wrap its cause")
	}
}
