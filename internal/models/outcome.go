package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RaceOutcome is how one entry's race ended. It is decoded once at the API
// boundary so analytics code never looks at raw position strings.
//
// Implementations: Classified, Retired, Disqualified, Unknown.
type RaceOutcome interface {
	Kind() OutcomeKind
	isOutcome()
}

// OutcomeKind names a RaceOutcome variant
type OutcomeKind string

const (
	OutcomeClassified   OutcomeKind = "classified"
	OutcomeRetired      OutcomeKind = "retired"
	OutcomeDisqualified OutcomeKind = "disqualified"
	OutcomeUnknown      OutcomeKind = "unknown"
)

// Classified is a finish with a final position. Lapped cars are classified.
type Classified struct {
	Position int
}

// Retired is a non-finish with the upstream status as cause
type Retired struct {
	Cause string
}

// Disqualified covers disqualification and exclusion
type Disqualified struct{}

// Unknown is used when the upstream record carries no usable outcome
type Unknown struct{}

func (Classified) Kind() OutcomeKind   { return OutcomeClassified }
func (Retired) Kind() OutcomeKind      { return OutcomeRetired }
func (Disqualified) Kind() OutcomeKind { return OutcomeDisqualified }
func (Unknown) Kind() OutcomeKind      { return OutcomeUnknown }

func (Classified) isOutcome()   {}
func (Retired) isOutcome()      {}
func (Disqualified) isOutcome() {}
func (Unknown) isOutcome()      {}

var lappedPattern = regexp.MustCompile(`^\+\d+ Laps?$`)

// classifiedStatuses are upstream statuses that mean the car was running at the flag
var classifiedStatuses = map[string]struct{}{
	"finished":  {},
	"running":   {},
	"completed": {},
}

// IsDNF reports whether status describes a retirement. Any non-empty status
// that is not "Finished", a lapped notation like "+2 Laps", or a bare
// position number counts as a retirement; ambiguous statuses are DNFs.
func IsDNF(status string) bool {
	s := strings.TrimSpace(status)
	if s == "" {
		return false
	}
	if _, ok := classifiedStatuses[strings.ToLower(s)]; ok {
		return false
	}
	if lappedPattern.MatchString(s) {
		return false
	}
	if _, err := strconv.Atoi(s); err == nil {
		return false
	}
	return true
}

// DecodeOutcome maps the upstream positionText/status pair to a RaceOutcome.
func DecodeOutcome(positionText, status string) RaceOutcome {
	pt := strings.TrimSpace(positionText)
	st := strings.TrimSpace(status)

	switch strings.ToUpper(pt) {
	case "":
		if st == "" {
			return Unknown{}
		}
		if IsDNF(st) {
			return Retired{Cause: st}
		}
		return Unknown{}
	case "D", "E":
		return Disqualified{}
	}

	pos, err := strconv.Atoi(pt)
	if err != nil {
		// R, W, F, N
		return Retired{Cause: st}
	}
	if pos < 1 {
		return Unknown{}
	}
	if IsDNF(st) {
		if strings.EqualFold(st, "Disqualified") {
			return Disqualified{}
		}
		return Retired{Cause: st}
	}
	return Classified{Position: pos}
}

type outcomeJSON struct {
	Kind     OutcomeKind `json:"kind"`
	Position int         `json:"position,omitempty"`
	Cause    string      `json:"cause,omitempty"`
}

// MarshalOutcome encodes a RaceOutcome as {"kind": ...}
func MarshalOutcome(o RaceOutcome) ([]byte, error) {
	if o == nil {
		o = Unknown{}
	}
	out := outcomeJSON{Kind: o.Kind()}
	switch v := o.(type) {
	case Classified:
		out.Position = v.Position
	case Retired:
		out.Cause = v.Cause
	}
	return json.Marshal(out)
}

// UnmarshalOutcome is the inverse of MarshalOutcome
func UnmarshalOutcome(data []byte) (RaceOutcome, error) {
	var in outcomeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	switch in.Kind {
	case OutcomeClassified:
		return Classified{Position: in.Position}, nil
	case OutcomeRetired:
		return Retired{Cause: in.Cause}, nil
	case OutcomeDisqualified:
		return Disqualified{}, nil
	case OutcomeUnknown, "":
		return Unknown{}, nil
	default:
		return nil, fmt.Errorf("unknown outcome kind %q", in.Kind)
	}
}
