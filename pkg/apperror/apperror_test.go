package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := Capacity("only %d left", 3)
	wrapped := fmt.Errorf("dispatch rejected: %w", base)

	if !IsKind(wrapped, KindCapacity) {
		t.Fatalf("kind lost through wrapping: %v", KindOf(wrapped))
	}
	if HTTPStatus(wrapped) != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", HTTPStatus(wrapped))
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindIntegrity, cause, "snapshot update failed")

	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable through Unwrap")
	}
	if HTTPStatus(err) != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", HTTPStatus(err))
	}
}

func TestUntaggedErrorsAreUnknown(t *testing.T) {
	err := errors.New("plain")
	if KindOf(err) != KindUnknown {
		t.Fatalf("kind = %v, want unknown", KindOf(err))
	}
	if HTTPStatus(err) != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", HTTPStatus(err))
	}
	if KindOf(nil) != KindUnknown {
		t.Fatal("nil should map to unknown")
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{NotFound("no such item"), http.StatusNotFound},
		{StateConflict("already assigned"), http.StatusConflict},
		{Capacity("insufficient stock"), http.StatusUnprocessableEntity},
		{Integrity("snapshot drift"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("%v: status = %d, want %d", tc.err, got, tc.want)
		}
	}
}
