package switchback

import (
	"fmt"
	"strings"
)

// An Environment is a different context in which a switchback app operates.
type Environment string

const (
	Demo        Environment = "DEMO"
	Development Environment = "DEVELOPMENT"
	Production  Environment = "PRODUCTION"
	Review      Environment = "REVIEW"
	Staging     Environment = "STAGING"
	Testing     Environment = "TESTING"
)

func (e Environment) String() string { return string(e) }

func (e Environment) Valid() error {
	switch e {
	case Demo, Development, Production, Review, Staging, Testing:
		return nil
	default:
		return fmt.Errorf("%w: environment %q", ErrNotValid, string(e))
	}
}

// UnmarshalText parses text case-insensitively into an Environment,
// so an Environment can be read straight out of configuration.
func (e *Environment) UnmarshalText(text []byte) error {
	env := Environment(strings.ToUpper(strings.TrimSpace(string(text))))
	if err := env.Valid(); err != nil {
		return err
	}

	*e = env
	return nil
}

func (e Environment) IsDevelopment() bool { return e == Development }
func (e Environment) IsDemo() bool        { return e == Demo }
func (e Environment) IsProduction() bool  { return e == Production }
func (e Environment) IsReview() bool      { return e == Review }
func (e Environment) IsStaging() bool     { return e == Staging }
func (e Environment) IsTesting() bool     { return e == Testing }

// ReportsErrors asserts whether errors and panics in the Environment
// ought to be forwarded to an error reporting service.
func (e Environment) ReportsErrors() bool {
	switch e {
	case Production, Staging, Demo:
		return true
	default:
		return false
	}
}

// VerboseErrors asserts whether the Environment may expose error details to the end user.
func (e Environment) VerboseErrors() bool {
	switch e {
	case Development, Testing:
		return true
	default:
		return false
	}
}
