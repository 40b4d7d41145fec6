package notifications

import (
	"encoding/json"
	"errors"
	"math"

	"barangayportal/models"
)

// ErrIllegalTransition is returned when a queue event is not legal in the
// queue's current state.
var ErrIllegalTransition = errors.New("illegal notification queue transition")

// State is the position of the post-login modal queue. The only legal paths
// are idle -> alert-shown -> warning-pending -> warning-shown -> dismissed,
// or idle -> warning-shown -> dismissed when no alert qualified, or
// idle -> dismissed when nothing qualified. Two modals are never visible at
// the same time because no state represents that.
type State int

const (
	StateIdle State = iota
	StateAlertShown
	StateWarningPending
	StateWarningShown
	StateDismissed
)

// String returns the state name used in API payloads.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAlertShown:
		return "alert-shown"
	case StateWarningPending:
		return "warning-pending"
	case StateWarningShown:
		return "warning-shown"
	case StateDismissed:
		return "dismissed"
	}
	return "unknown"
}

// MarshalJSON emits the state name rather than the numeric value.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a state name.
func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for _, st := range []State{StateIdle, StateAlertShown, StateWarningPending, StateWarningShown, StateDismissed} {
		if st.String() == name {
			*s = st
			return nil
		}
	}
	return errors.New("unknown queue state: " + name)
}

type event int

const (
	eventLoginChecked event = iota
	eventAlertDismissed
	eventWarningDelayElapsed
	eventWarningDismissed
)

// Queue holds the pending post-login notices for one user.
type Queue struct {
	State   State                            `json:"state"`
	Alert   *models.ApprovedDocumentAlert    `json:"alert,omitempty"`
	Warning *models.ProfileCompletionWarning `json:"warning,omitempty"`
}

// apply is the single transition function for the queue state machine.
func (q *Queue) apply(ev event) error {
	switch ev {
	case eventLoginChecked:
		if q.State != StateIdle {
			return ErrIllegalTransition
		}
		switch {
		case q.Alert != nil:
			// Warning, if any, stays stored and pending behind the alert.
			q.State = StateAlertShown
		case q.Warning != nil:
			q.State = StateWarningShown
		default:
			q.State = StateDismissed
		}
		return nil

	case eventAlertDismissed:
		if q.State != StateAlertShown {
			return ErrIllegalTransition
		}
		if q.Warning != nil {
			q.State = StateWarningPending
		} else {
			q.State = StateDismissed
		}
		return nil

	case eventWarningDelayElapsed:
		if q.State != StateWarningPending {
			return ErrIllegalTransition
		}
		q.State = StateWarningShown
		return nil

	case eventWarningDismissed:
		if q.State != StateWarningShown {
			return ErrIllegalTransition
		}
		q.State = StateDismissed
		return nil
	}
	return ErrIllegalTransition
}

// BuildAlert filters document requests down to those that are approved,
// unpaid, and carry a non-zero fee. Returns nil when none qualify.
func BuildAlert(requests []models.DocumentRequest) *models.ApprovedDocumentAlert {
	var qualifying []models.DocumentRequest
	for _, req := range requests {
		if req.IsApprovedUnpaid() {
			qualifying = append(qualifying, req)
		}
	}
	if len(qualifying) == 0 {
		return nil
	}
	return &models.ApprovedDocumentAlert{
		Requests: qualifying,
		Message:  alertMessage(qualifying),
	}
}

// EvaluateWarning decides whether a profile-completion warning applies to the
// user. Only resident-class users are eligible; each skip condition stands on
// its own:
//   - profile already complete
//   - a verification request pending review
//   - no completion deadline recorded (not yet applicable, not an error)
//   - days-remaining not a finite number
func EvaluateWarning(user models.User) *models.ProfileCompletionWarning {
	if !models.IsResidentRole(user.Role) {
		return nil
	}
	if user.ProfileComplete {
		return nil
	}
	if user.VerificationStatus == models.VerificationPending {
		return nil
	}
	if user.PSADeadline == nil {
		return nil
	}
	if user.PSADaysLeft == nil || math.IsNaN(*user.PSADaysLeft) || math.IsInf(*user.PSADaysLeft, 0) {
		return nil
	}

	return &models.ProfileCompletionWarning{
		DaysLeft:           int(*user.PSADaysLeft),
		Deadline:           *user.PSADeadline,
		VerificationStatus: user.VerificationStatus,
		RejectionReason:    user.RejectionReason,
	}
}
