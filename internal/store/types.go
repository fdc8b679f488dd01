// Package store defines the API's records and the in-memory store that owns
// them.
package store

import (
	"encoding/json"
	"time"
)

// Collection names.
const (
	CollectionMinions  = "minions"
	CollectionIdeas    = "ideas"
	CollectionMeetings = "meetings"
	CollectionWork     = "work"
)

// Fields is a decoded JSON request body.
type Fields map[string]any

// Minion is a member of the workforce. Attributes the client sends beyond the
// schema are kept in Extra and echoed back. Decoding goes through the same
// validation as request bodies, so keys are matched case-sensitively.
type Minion struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	Salary     float64 `json:"salary"`
	Weaknesses string  `json:"weaknesses"`
	Extra      Fields  `json:"-"`
}

var minionKeys = []string{"id", "name", "title", "salary", "weaknesses"}

func (m Minion) MarshalJSON() ([]byte, error) {
	type plain Minion
	return withExtra(plain(m), m.Extra)
}

func (m *Minion) UnmarshalJSON(data []byte) error {
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	v, err := MinionFromFields(f)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Idea is a business proposal. A stored idea is always worth at least
// MinIdeaValue.
type Idea struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	NumWeeks      float64 `json:"numWeeks"`
	WeeklyRevenue float64 `json:"weeklyRevenue"`
	Extra         Fields  `json:"-"`
}

var ideaKeys = []string{"id", "name", "description", "numWeeks", "weeklyRevenue"}

// Value is the projected total value of the idea.
func (i Idea) Value() float64 {
	return i.NumWeeks * i.WeeklyRevenue
}

func (i Idea) MarshalJSON() ([]byte, error) {
	type plain Idea
	return withExtra(plain(i), i.Extra)
}

func (i *Idea) UnmarshalJSON(data []byte) error {
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	v, err := IdeaFromFields(f)
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// Meeting is generated entirely by the server.
type Meeting struct {
	ID   string    `json:"id"`
	Time string    `json:"time"`
	Date time.Time `json:"date"`
	Day  string    `json:"day"`
	Note string    `json:"note"`
}

// Work is a task assigned to a minion.
type Work struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	MinionID    string  `json:"minionId"`
	Extra       Fields  `json:"-"`
}

var workKeys = []string{"id", "title", "description", "hours", "minionId"}

func (w Work) MarshalJSON() ([]byte, error) {
	type plain Work
	return withExtra(plain(w), w.Extra)
}

func (w *Work) UnmarshalJSON(data []byte) error {
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	v, err := WorkFromFields(f)
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// withExtra marshals base and adds the extra attributes that do not collide
// with a schema field.
func withExtra(base any, extra Fields) ([]byte, error) {
	data, err := json.Marshal(base)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, taken := obj[k]; taken {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		obj[k] = raw
	}
	return json.Marshal(obj)
}

func stripKeys(f Fields, keys []string) Fields {
	var extra Fields
	for k, v := range f {
		if contains(keys, k) {
			continue
		}
		if extra == nil {
			extra = make(Fields)
		}
		extra[k] = v
	}
	return extra
}

func contains(keys []string, k string) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}
