package domain

// allStatuses lists every valid ride status. Used for payload validation on
// the admin surface.
var allStatuses = map[RideStatus]struct{}{
	RideStatusPending:             {},
	RideStatusAccepted:            {},
	RideStatusArrived:             {},
	RideStatusCompleted:           {},
	RideStatusCancelled:           {},
	RideStatusFailedPickup:        {},
	RideStatusCommunicationFailed: {},
	RideStatusPassengerNoShow:     {},
	RideStatusNoDriverAvailable:   {},
}

// legalTransitions is the exhaustive transition table. A status absent from
// the map is terminal. Admin overrides bypass this table entirely and are
// audited separately.
var legalTransitions = map[RideStatus]map[RideStatus]struct{}{
	RideStatusPending: {
		RideStatusAccepted:          {},
		RideStatusCancelled:         {},
		RideStatusNoDriverAvailable: {},
	},
	RideStatusAccepted: {
		RideStatusArrived:             {},
		RideStatusCancelled:           {},
		RideStatusFailedPickup:        {},
		RideStatusCommunicationFailed: {},
		RideStatusPassengerNoShow:     {},
	},
	RideStatusArrived: {
		RideStatusCompleted:           {},
		RideStatusCancelled:           {},
		RideStatusFailedPickup:        {},
		RideStatusCommunicationFailed: {},
		RideStatusPassengerNoShow:     {},
	},
}

// statusLabels maps each status to its passenger-facing label.
var statusLabels = map[RideStatus]string{
	RideStatusPending:             "Waiting for driver",
	RideStatusAccepted:            "Driver accepted",
	RideStatusArrived:             "Driver arrived",
	RideStatusCompleted:           "Completed",
	RideStatusCancelled:           "Cancelled",
	RideStatusFailedPickup:        "Accepted but pickup failed",
	RideStatusCommunicationFailed: "Communication failed",
	RideStatusPassengerNoShow:     "Passenger no-show",
	RideStatusNoDriverAvailable:   "No driver available",
}

// IsValidStatus reports whether s is one of the enumerated ride statuses.
func IsValidStatus(s RideStatus) bool {
	_, ok := allStatuses[s]
	return ok
}

// IsTerminal reports whether no further transitions are permitted out of s.
func IsTerminal(s RideStatus) bool {
	_, ok := legalTransitions[s]
	return !ok
}

// CanTransition reports whether from -> to is a legal lifecycle transition.
func CanTransition(from, to RideStatus) bool {
	next, ok := legalTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// Label returns the human-readable label for a status. Unknown statuses fall
// back to the raw value.
func Label(s RideStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}
