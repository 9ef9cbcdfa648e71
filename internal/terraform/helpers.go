package terraform

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "tfevents/internal/errors"
	"tfevents/internal/models"
)

// verbChanges maps the verbs terraform prints while applying to the change
// they describe.
var verbChanges = map[string]models.ResourceChange{
	"Creating": models.ChangeCreate,
	"creating": models.ChangeCreate,
	"Creation": models.ChangeCreate,

	"Reading": models.ChangeRead,
	"reading": models.ChangeRead,
	"Read":    models.ChangeRead,

	"Modifying":     models.ChangeUpdate,
	"modifying":     models.ChangeUpdate,
	"Modifications": models.ChangeUpdate,

	"Destroying":  models.ChangeDestroy,
	"destroying":  models.ChangeDestroy,
	"Destruction": models.ChangeDestroy,
}

// actionToChange returns the change for an apply verb, or nil if the verb
// is not known.
func actionToChange(action string) []models.ResourceChange {
	change, ok := verbChanges[action]
	if !ok {
		return nil
	}
	return []models.ResourceChange{change}
}

// captures holds the named groups that took part in a match.
type captures map[string]string

func match(re *regexp.Regexp, line string) (captures, bool) {
	idx := re.FindStringSubmatchIndex(line)
	if idx == nil {
		return nil, false
	}

	caps := captures{}
	for i, name := range re.SubexpNames() {
		if name == "" || idx[2*i] < 0 {
			continue
		}
		caps[name] = line[idx[2*i]:idx[2*i+1]]
	}
	return caps, true
}

func (c captures) has(name string) bool {
	_, ok := c[name]
	return ok
}

func (c captures) text(name string) string {
	return strings.TrimSpace(c[name])
}

// count parses a summary count. Values that do not fit in 32 bits are
// reported as absent.
func (c captures) count(name string) *uint32 {
	raw, ok := c[name]
	if !ok {
		return nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return nil
	}
	return models.Count(uint32(n))
}

func (c captures) changes() []models.ResourceChange {
	if action, ok := c["action"]; ok {
		return actionToChange(action)
	}

	switch {
	case c.has("action_create"):
		return []models.ResourceChange{models.ChangeCreate}
	case c.has("action_read"):
		return []models.ResourceChange{models.ChangeRead}
	case c.has("action_update"):
		return []models.ResourceChange{models.ChangeUpdate}
	case c.has("action_destroy"):
		return []models.ResourceChange{models.ChangeDestroy}
	case c.has("action_replace"):
		return []models.ResourceChange{models.ChangeDestroy, models.ChangeCreate}
	}
	return nil
}

// validatePlanPath checks that a plan file path can be handed to terraform
// as a single argument.
func validatePlanPath(path string) error {
	switch {
	case path == "":
		return apperrors.NewPathError(path, "plan file path is empty")
	case !utf8.ValidString(path):
		return apperrors.NewPathError(path, "plan file path is not valid UTF-8")
	case strings.ContainsRune(path, 0):
		return apperrors.NewPathError(path, "plan file path contains a NUL byte")
	}
	return nil
}
