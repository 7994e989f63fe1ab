package core

import (
	"bytes"
	"encoding/json"
	"errors"
)

const DefaultSkillLevel = 5

var ErrNullSkillLevel = errors.New("skill_level must be an integer, not null")

// Request types

// EngineMoveRequest is the wire body of POST /engine-move.
// Pointers distinguish an absent field from its zero value.
type EngineMoveRequest struct {
	FEN        *string `json:"fen" validate:"required"`
	SkillLevel *int    `json:"skill_level,omitempty"`
}

// UnmarshalJSON rejects an explicit null skill_level; only omitting it selects the default
func (r *EngineMoveRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["skill_level"]; ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ErrNullSkillLevel
	}

	type wire EngineMoveRequest
	return json.Unmarshal(data, (*wire)(r))
}

// Skill returns the requested skill level or the default when omitted
func (r *EngineMoveRequest) Skill() int {
	if r.SkillLevel == nil {
		return DefaultSkillLevel
	}
	return *r.SkillLevel
}

// Response types

type HealthResponse struct {
	Status string `json:"status"`
}

type NewGameResponse struct {
	FEN string `json:"fen"`
}

// MoveResponse is a move in coordinate form; Promotion is nil unless the move promotes
type MoveResponse struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Promotion *string `json:"promotion"`
}

// UCI joins the move back into UCI notation, e.g. "e7e8q"
func (m MoveResponse) UCI() string {
	s := m.From + m.To
	if m.Promotion != nil {
		s += *m.Promotion
	}
	return s
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
