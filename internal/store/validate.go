package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MinIdeaValue is the smallest projected value (numWeeks * weeklyRevenue)
// an idea may have.
const MinIdeaValue = 1_000_000

// Reason enumerates why a record failed validation.
type Reason int

const (
	ReasonNotString Reason = iota + 1
	ReasonNotNumeric
	ReasonUnknownMinion
	ReasonBelowThreshold
)

func (r Reason) String() string {
	switch r {
	case ReasonNotString:
		return "must be a string"
	case ReasonNotNumeric:
		return "must be a number"
	case ReasonUnknownMinion:
		return "does not reference an existing minion"
	case ReasonBelowThreshold:
		return fmt.Sprintf("must be worth at least %d", MinIdeaValue)
	default:
		return "is invalid"
	}
}

// ValidationError reports the first field of a record that failed validation.
type ValidationError struct {
	Collection string
	Field      string
	Reason     Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Collection, e.Field, e.Reason)
}

// MinionFromFields validates a request body against the minion schema.
func MinionFromFields(f Fields) (Minion, error) {
	var (
		m   Minion
		err error
	)
	m.ID = idField(f)
	if m.Name, err = stringField(f, CollectionMinions, "name"); err != nil {
		return Minion{}, err
	}
	if m.Title, err = stringField(f, CollectionMinions, "title"); err != nil {
		return Minion{}, err
	}
	if m.Weaknesses, err = stringField(f, CollectionMinions, "weaknesses"); err != nil {
		return Minion{}, err
	}
	if m.Salary, err = numberField(f, CollectionMinions, "salary"); err != nil {
		return Minion{}, err
	}
	m.Extra = stripKeys(f, minionKeys)
	return m, nil
}

// IdeaFromFields validates a request body against the idea schema. The value
// threshold is enforced when the idea is stored.
func IdeaFromFields(f Fields) (Idea, error) {
	var (
		i   Idea
		err error
	)
	i.ID = idField(f)
	if i.Name, err = stringField(f, CollectionIdeas, "name"); err != nil {
		return Idea{}, err
	}
	if i.Description, err = stringField(f, CollectionIdeas, "description"); err != nil {
		return Idea{}, err
	}
	if i.NumWeeks, err = numberField(f, CollectionIdeas, "numWeeks"); err != nil {
		return Idea{}, err
	}
	if i.WeeklyRevenue, err = numberField(f, CollectionIdeas, "weeklyRevenue"); err != nil {
		return Idea{}, err
	}
	i.Extra = stripKeys(f, ideaKeys)
	return i, nil
}

// WorkFromFields validates a request body against the work schema. Whether
// minionId names an existing minion is checked when the work is stored.
func WorkFromFields(f Fields) (Work, error) {
	var (
		w   Work
		err error
	)
	w.ID = idField(f)
	if w.Title, err = stringField(f, CollectionWork, "title"); err != nil {
		return Work{}, err
	}
	if w.Description, err = stringField(f, CollectionWork, "description"); err != nil {
		return Work{}, err
	}
	if w.Hours, err = numberField(f, CollectionWork, "hours"); err != nil {
		return Work{}, err
	}
	if w.MinionID, err = stringField(f, CollectionWork, "minionId"); err != nil {
		return Work{}, err
	}
	w.Extra = stripKeys(f, workKeys)
	return w, nil
}

func idField(f Fields) string {
	id, _ := f["id"].(string)
	return id
}

// stringField reads a string attribute. Falsy values read as "".
func stringField(f Fields, collection, key string) (string, error) {
	v := f[key]
	if !Truthy(v) {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &ValidationError{Collection: collection, Field: key, Reason: ReasonNotString}
	}
	return s, nil
}

// numberField reads a finite number, accepting numeric strings.
func numberField(f Fields, collection, key string) (float64, error) {
	invalid := &ValidationError{Collection: collection, Field: key, Reason: ReasonNotNumeric}
	switch v := f[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, invalid
		}
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, invalid
		}
		n := ToNumber(v)
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, invalid
		}
		return n, nil
	default:
		return 0, invalid
	}
}

// Truthy reports whether a decoded JSON value counts as true in a boolean
// context: null, false, 0, NaN and "" do not.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

// ToNumber coerces a decoded JSON value to a number. Strings are trimmed and
// the empty string is 0; booleans are 0 or 1; null is 0. Anything that does
// not convert yields NaN.
func ToNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case string:
		s := strings.TrimSpace(x)
		switch s {
		case "":
			return 0
		case "Infinity", "+Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return math.NaN()
		}
		return n
	default:
		return math.NaN()
	}
}
