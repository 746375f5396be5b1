// Package site holds the identifiers of a duplicated site instance: the scrub
// target supplied by the hosting platform and the site metadata stored in the
// copied database.
package site

import (
	"errors"
	"fmt"
)

// InfoVariable is the acsf_variables row holding the serialized site metadata.
const InfoVariable = "acsf_site_info"

// ErrNotEnoughArguments is returned when any identifying parameter is missing.
var ErrNotEnoughArguments = errors.New("not enough arguments")

// Target identifies which copied database/filesystem a scrub run acts on.
// It is immutable for the run.
type Target struct {
	Group  string // hosting site group
	Env    string // hosting environment
	DBRole string // database role (name) of the copied database
}

// ParseTarget builds a Target from the three positional parameters
// (site group, environment, database role). Values are kept as given; only
// empty ones are rejected. Extra arguments are ignored.
func ParseTarget(args []string) (Target, error) {
	if len(args) < 3 {
		return Target{}, ErrNotEnoughArguments
	}
	t := Target{
		Group:  args[0],
		Env:    args[1],
		DBRole: args[2],
	}
	if t.Group == "" || t.Env == "" || t.DBRole == "" {
		return Target{}, ErrNotEnoughArguments
	}
	return t, nil
}

// String renders the target the way platform tooling names environments.
func (t Target) String() string {
	return fmt.Sprintf("%s.%s/%s", t.Group, t.Env, t.DBRole)
}

// Info is the decoded acsf_site_info variable. Only the fields the scrub needs
// are declared; the platform owns the rest.
type Info struct {
	SiteName string `json:"site_name"`
	SiteID   int64  `json:"site_id,omitempty"`
}
