package guard

import contactdomain "github.com/propelre/leadpulse/internal/contact/domain"

// NextAssignmentState advances the two-pass reassignment machine:
//
//	present -> suspect              first sync the contact is absent
//	suspect -> confirmed_reassigned second consecutive absent sync
//	suspect -> present              contact reappears before confirmation
//
// A confirmed reassignment is terminal; a reappearing contact re-enters
// through ingest as a fresh assignment.
func NextAssignmentState(state contactdomain.AssignmentState, presentInFeed bool) contactdomain.AssignmentState {
	switch state {
	case contactdomain.AssignmentPresent:
		if !presentInFeed {
			return contactdomain.AssignmentSuspect
		}
		return contactdomain.AssignmentPresent
	case contactdomain.AssignmentSuspect:
		if presentInFeed {
			return contactdomain.AssignmentPresent
		}
		return contactdomain.AssignmentReassigned
	case contactdomain.AssignmentReassigned:
		return contactdomain.AssignmentReassigned
	default:
		return contactdomain.AssignmentPresent
	}
}
