package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fgsantosti/estoque-agua/models"
	"github.com/fgsantosti/estoque-agua/utils"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{utils.ErrorRecordNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", utils.ErrorRecordNotFound), http.StatusNotFound},
		{models.ErrDuplicateSaleNumber, http.StatusConflict},
		{models.ErrInsufficientStock, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: Mineral Water 20L", models.ErrInsufficientStock), http.StatusUnprocessableEntity},
		{models.ErrOverpayment, http.StatusUnprocessableEntity},
		{models.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{errors.New("duplicate name"), http.StatusBadRequest},
	}

	for _, tc := range cases {
		if got := statusForError(tc.err); got != tc.want {
			t.Fatalf("statusForError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
