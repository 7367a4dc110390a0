// Package domain holds typed identifiers shared across modules. Each ID is a
// distinct named uuid.UUID so an ApplicationID can never be passed where a
// CompartmentID is expected.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "fellinglicence/pkg/domain-errors"
)

// maxIDLength bounds parse input before it reaches uuid.Parse.
const maxIDLength = 64

type (
	UserID        uuid.UUID
	ApplicationID uuid.UUID
	CompartmentID uuid.UUID
	ConditionID   uuid.UUID
)

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id CompartmentID) String() string { return uuid.UUID(id).String() }
func (id ConditionID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id CompartmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ConditionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// NewConditionID generates a random condition record identifier.
func NewConditionID() ConditionID { return ConditionID(uuid.New()) }

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	return UserID(u), err
}

func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID(s, "application ID")
	return ApplicationID(u), err
}

func ParseCompartmentID(s string) (CompartmentID, error) {
	u, err := parseUUID(s, "compartment ID")
	return CompartmentID(u), err
}

func ParseConditionID(s string) (ConditionID, error) {
	u, err := parseUUID(s, "condition ID")
	return ConditionID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must not be nil")
	}
	return u, nil
}
