package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Constructors(t *testing.T) {
	notFound := NotFound("lead not found")
	assert.Equal(t, http.StatusNotFound, notFound.Status)
	assert.Equal(t, CodeNotFound, notFound.Code)
	assert.Equal(t, "lead not found", notFound.Error())
	assert.ErrorIs(t, notFound, ErrNotFound)

	unauth := Unauthorized("not yours")
	assert.Equal(t, http.StatusForbidden, unauth.Status)
	assert.Equal(t, CodeUnauthorized, unauth.Code)

	assert.Equal(t, CodeValidation, Validation("bad").Code)
	assert.Equal(t, CodeInvalidState, InvalidState("bad").Code)
	assert.ErrorIs(t, AlreadyAccepted("done"), ErrAlreadyAccepted)
	assert.Equal(t, http.StatusConflict, Conflict("race").Status)
	assert.Equal(t, CodeInvalidAmount, InvalidAmount("zero").Code)
	assert.Equal(t, CodeForbidden, Forbidden("no").Code)

	internal := InternalError(stderrors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, "internal server error", internal.Error())
}

func TestQuotaExceeded_Details(t *testing.T) {
	err := QuotaExceeded(5, 5)
	assert.Equal(t, CodeQuotaExceeded, err.Code)
	assert.Equal(t, 5, err.Details["currentCount"])
	assert.Equal(t, 5, err.Details["maxLeads"])
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestPaymentFailed_KeepsGatewayMessage(t *testing.T) {
	gatewayErr := stderrors.New("card_declined")
	err := PaymentFailed("Your card was declined.", gatewayErr)
	assert.Equal(t, "Your card was declined.", err.Error())
	assert.ErrorIs(t, err, gatewayErr)

	assert.ErrorIs(t, PaymentFailed("declined", nil), ErrPaymentFailed)
}

func TestAppError_ErrorFallbacks(t *testing.T) {
	assert.Equal(t, "wrapped", (&AppError{Err: stderrors.New("wrapped")}).Error())
	assert.Equal(t, "X", (&AppError{Code: "X"}).Error())
}

func TestFromRepository(t *testing.T) {
	assert.Equal(t, CodeNotFound, FromRepository(fmt.Errorf("get: %w", ErrNotFound), "lead not found").Code)
	assert.Equal(t, CodeConflict, FromRepository(ErrConflict, "").Code)
	assert.Equal(t, CodeConflict, FromRepository(ErrAlreadyExists, "").Code)
	assert.Equal(t, CodeInternalError, FromRepository(stderrors.New("boom"), "").Code)

	original := Validation("keep me")
	assert.Same(t, original, FromRepository(original, ""))
}
