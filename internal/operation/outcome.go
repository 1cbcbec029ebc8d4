// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package operation

import "fmt"

// Outcome is the terminal result of one operation attempt.
type Outcome int

const (
	Success          Outcome = iota
	PermissionDenied         // the OS refused to spawn or execute the command
	EscalationFailed         // the elevation tool itself could not be run
	OperationFailed          // the command ran and failed, timed out, or never started
	UserCancelled            // consent was declined
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case PermissionDenied:
		return "permission_denied"
	case EscalationFailed:
		return "escalation_failed"
	case OperationFailed:
		return "operation_failed"
	case UserCancelled:
		return "user_cancelled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ParseOutcome converts a log token to an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "success":
		return Success, nil
	case "permission_denied":
		return PermissionDenied, nil
	case "escalation_failed":
		return EscalationFailed, nil
	case "operation_failed":
		return OperationFailed, nil
	case "user_cancelled":
		return UserCancelled, nil
	default:
		return 0, fmt.Errorf("unknown outcome: %q", s)
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	if o < Success || o > UserCancelled {
		return nil, fmt.Errorf("invalid outcome %d", int(o))
	}
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
