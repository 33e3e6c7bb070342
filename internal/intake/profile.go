package intake

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const questionsKey = "questions"

// Profile accumulates the fields collected from one candidate.
type Profile struct {
	Name             string   `mapstructure:"name"`
	Email            string   `mapstructure:"email"`
	Phone            string   `mapstructure:"phone"`
	YearsExperience  int      `mapstructure:"years_experience"`
	DesiredPositions []string `mapstructure:"desired_positions"`
	Location         string   `mapstructure:"location"`
	TechStack        []string `mapstructure:"tech_stack"`

	TechnicalResponses *Responses `mapstructure:"-"`
}

func NewProfile() *Profile {
	return &Profile{TechnicalResponses: NewResponses()}
}

// Fields flattens the profile for structured logging.
func (p *Profile) Fields() (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	if err := mapstructure.Decode(p, &fields); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	fields["technical_responses"] = p.TechnicalResponses.Len()
	return fields, nil
}

// splitList splits comma-separated answers without trimming the tokens.
func splitList(s string) []string {
	return strings.Split(s, ",")
}

// Responses is an insertion-ordered map of technical answers.
type Responses struct {
	keys   []string
	values map[string]string
}

func NewResponses() *Responses {
	return &Responses{values: make(map[string]string)}
}

// Set stores the value; an existing key keeps its original position.
func (r *Responses) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *Responses) Get(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.values[key]
	return v, ok
}

func (r *Responses) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the keys in insertion order.
func (r *Responses) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}
