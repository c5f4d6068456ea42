package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from RequestStatus
		to   RequestStatus
		want bool
	}{
		{"verification to payment", StatusAwaitingVerification, StatusAwaitingPayment, true},
		{"verification to revision", StatusAwaitingVerification, StatusRevision, true},
		{"verification to rejected", StatusAwaitingVerification, StatusRejected, true},
		{"payment to processing", StatusAwaitingPayment, StatusProcessing, true},
		{"revision back to verification", StatusRevision, StatusAwaitingVerification, true},
		{"rejected back to verification", StatusRejected, StatusAwaitingVerification, true},
		{"processing to field", StatusProcessing, StatusFieldProcessing, true},
		{"field to returned", StatusFieldProcessing, StatusFieldReturned, true},
		{"returned to shipped", StatusFieldReturned, StatusShipped, true},
		{"ready for pickup to completed", StatusReadyForPickup, StatusCompleted, true},
		{"shipped to delivered", StatusShipped, StatusDelivered, true},

		{"no skip from verification to processing", StatusAwaitingVerification, StatusProcessing, false},
		{"no payment rollback", StatusProcessing, StatusAwaitingPayment, false},
		{"completed is final", StatusCompleted, StatusAwaitingVerification, false},
		{"delivered is final", StatusDelivered, StatusShipped, false},
		{"shipped cannot complete", StatusShipped, StatusCompleted, false},
		{"unknown source", RequestStatus("limbo"), StatusCompleted, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusDelivered))
	assert.False(t, IsTerminal(StatusShipped))
	assert.False(t, IsTerminal(StatusAwaitingVerification))
	assert.False(t, IsTerminal(RequestStatus("limbo")))
}

func TestIsValidStatus(t *testing.T) {
	for st := range StatusLabel {
		assert.True(t, IsValidStatus(st), string(st))
	}
	assert.False(t, IsValidStatus(RequestStatus("limbo")))
	assert.False(t, IsValidStatus(RequestStatus("")))
}

func TestFieldLocked(t *testing.T) {
	locked := []RequestStatus{
		StatusAwaitingFinalization, StatusReadyForPickup,
		StatusCompleted, StatusShipped, StatusDelivered,
	}
	for _, st := range locked {
		assert.True(t, FieldLocked(st), string(st))
	}

	open := []RequestStatus{StatusFieldProcessing, StatusFieldReturned, StatusProcessing}
	for _, st := range open {
		assert.False(t, FieldLocked(st), string(st))
	}
}

func TestFieldUpdatableIsWithinTransitions(t *testing.T) {
	// every status a field worker may set must be reachable from
	// field_processing, where the work actually happens
	for _, st := range FieldUpdatable {
		assert.True(t, CanTransition(StatusFieldProcessing, st), string(st))
	}
}

func TestStatusLabelCoversAllStatuses(t *testing.T) {
	for st := range transitions {
		assert.NotEmpty(t, StatusLabel[st], string(st))
	}
}
