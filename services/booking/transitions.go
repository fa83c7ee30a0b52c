package booking

import "studiobook/models"

// allowedTransitions is the whole booking lifecycle. Anything not listed,
// including staying in the same state, is rejected.
var allowedTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingStatusPending:   {models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusConfirmed: {models.BookingStatusCompleted, models.BookingStatusCancelled},
	models.BookingStatusCompleted: {},
	models.BookingStatusCancelled: {},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to models.BookingStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTargets lists the statuses reachable from s.
func AllowedTargets(s models.BookingStatus) []models.BookingStatus {
	return append([]models.BookingStatus{}, allowedTransitions[s]...)
}
