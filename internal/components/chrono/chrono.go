package chrono

import (
	"time"
	_ "time/tzdata"
)

// API is the clock used for snapshot timestamps and scheduling.
type API interface {
	Now() time.Time
	Location() *time.Location
}

// DefaultLocation is the timezone IServ instances render dates in.
const DefaultLocation = "Europe/Berlin"

type StandardImpl struct {
	location *time.Location
}

// NewStandardImpl loads `location`, an empty string means DefaultLocation.
func NewStandardImpl(location string) (StandardImpl, error) {
	if location == "" {
		location = DefaultLocation
	}
	loc, err := time.LoadLocation(location)
	if err != nil {
		return StandardImpl{}, err
	}
	return StandardImpl{location: loc}, nil
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// FixedImpl always returns the same instant.
type FixedImpl struct {
	Time time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.Time
}

func (f FixedImpl) Location() *time.Location {
	return f.Time.Location()
}
