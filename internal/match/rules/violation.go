package rules

import (
	"errors"
	"fmt"
)

// Code identifies a precondition violation. Codes are stable and surfaced
// verbatim to clients; an action failing with one produced no state change.
type Code string

const (
	CodeNotYourTurn        Code = "NotYourTurn"
	CodeMatchNotActive     Code = "MatchNotActive"
	CodeNotAParticipant    Code = "NotAParticipant"
	CodeInsufficientEnergy Code = "InsufficientEnergy"
	CodeZoneFull           Code = "ZoneFull"
	CodeCardNotInHand      Code = "CardNotInHand"
	CodeCardNotOnField     Code = "CardNotOnField"
	CodeAttackerExhausted  Code = "AttackerExhausted"
	CodeInvalidAttacker    Code = "InvalidAttacker"
	CodeInvalidDefender    Code = "InvalidDefender"
	CodeNoAttackPower      Code = "NoAttackPower"
	CodeNoDefenseValue     Code = "NoDefenseValue"
	CodeInvalidStance      Code = "InvalidStance"
)

// Violation is a rejected precondition. It is always recoverable by the
// caller and never retried automatically.
type Violation struct {
	Code    Code
	Message string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

func violate(code Code, format string, args ...any) *Violation {
	return &Violation{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsViolation unwraps err into a Violation if it is one.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// IsCode reports whether err is a Violation with the given code.
func IsCode(err error, code Code) bool {
	v, ok := AsViolation(err)
	return ok && v.Code == code
}
