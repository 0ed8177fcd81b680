package domain

import "fmt"

// UserAction is the decision a user takes on an interception alert.
// The numeric values mirror the button indexes the notifier reports.
type UserAction uint8

const (
	// ActionAllow resumes the paused download.
	ActionAllow UserAction = iota
	// ActionCancel cancels the paused download.
	ActionCancel
)

// String returns a stable string representation of the action.
func (a UserAction) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionCancel:
		return "cancel"
	default:
		return fmt.Sprintf("UserAction(%d)", uint8(a))
	}
}

// ParseUserAction converts a notifier button index into a UserAction.
func ParseUserAction(index int) (UserAction, error) {
	switch index {
	case 0:
		return ActionAllow, nil
	case 1:
		return ActionCancel, nil
	default:
		return 0, fmt.Errorf("unsupported action index: %d", index)
	}
}
