package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"
)

// Registration is a student's entry for one or more fest events. It is
// written once and never changed.
type Registration struct {
	ID            string    `json:"id" bson:"_id"`
	Name          string    `json:"name" bson:"name"`
	RollNumber    string    `json:"rollNumber" bson:"rollNumber"`
	Year          string    `json:"year" bson:"year"`
	Section       string    `json:"section" bson:"section"`
	Events        EventSet  `json:"event" bson:"event"`
	TransactionID string    `json:"transactionId" bson:"transactionId"`
	Email         string    `json:"email" bson:"email"`
	LoggedEmail   string    `json:"loggedEmail" bson:"loggedEmail"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// RegistrationInput is the body of POST /api/register. LoggedEmail is the
// address the client saw after Google sign-in; the JSON key is lower-case
// for compatibility with the web form.
type RegistrationInput struct {
	Name          string   `json:"name" validate:"required"`
	RollNumber    string   `json:"rollNumber" validate:"required"`
	Year          string   `json:"year" validate:"required"`
	Section       string   `json:"section" validate:"required"`
	Events        EventSet `json:"event" validate:"required,min=1"`
	TransactionID string   `json:"transactionId" validate:"required"`
	Email         string   `json:"email" validate:"required"`
	LoggedEmail   string   `json:"loggedemail" validate:"required"`
}

// Normalize trims every text field and the event names in place.
func (in *RegistrationInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.RollNumber = NormalizeRollNumber(in.RollNumber)
	in.Year = strings.TrimSpace(in.Year)
	in.Section = strings.TrimSpace(in.Section)
	in.Events = NewEventSet(in.Events...)
	in.TransactionID = strings.TrimSpace(in.TransactionID)
	in.Email = strings.TrimSpace(in.Email)
	in.LoggedEmail = strings.TrimSpace(in.LoggedEmail)
}

// NormalizeRollNumber is the canonical form under which roll numbers are
// stored and compared: surrounding whitespace removed, upper-case.
func NormalizeRollNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// EventSet is a list of event names without blanks or repeats, in order of
// first appearance.
type EventSet []string

func NewEventSet(names ...string) EventSet {
	seen := make(map[string]struct{}, len(names))
	out := make(EventSet, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

var eventSetType = reflect.TypeOf(EventSet(nil))

// eventSetTypeError is a *json.UnmarshalTypeError so the decoder fills in
// the field name of the enclosing struct.
func eventSetTypeError(v any) error {
	return &json.UnmarshalTypeError{Value: jsonKind(v), Type: eventSetType}
}

func jsonKind(v any) string {
	switch v.(type) {
	case bool:
		return "bool"
	case float64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return "null"
	}
}

// UnmarshalJSON accepts an array of strings or a single string, which the
// web form sends when only one event is picked.
func (s *EventSet) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*s = nil
	case string:
		*s = EventSet{v}
	case []any:
		out := make(EventSet, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return eventSetTypeError(item)
			}
			out = append(out, str)
		}
		*s = out
	default:
		return eventSetTypeError(v)
	}
	return nil
}
