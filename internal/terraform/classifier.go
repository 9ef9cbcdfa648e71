package terraform

import (
	"regexp"

	apperrors "tfevents/internal/errors"
	"tfevents/internal/models"
)

// Pattern sources. Each must match the English console output of terraform
// run with -no-color.
const (
	// "  # <addr> will be created|read during apply|updated in-place|destroyed"
	// "  # <addr> is tainted, so must be replaced"
	// "  # <addr> must be replaced"
	planChangePattern = `^\s*# (?P<address>.+?) (?:will be (?:(?P<action_create>created)|(?P<action_read>read) during apply|(?P<action_update>updated) in-place|(?P<action_destroy>destroyed))|(?:is tainted, so )?must be (?P<action_replace>replaced))`

	// "Plan: 1 to add, 2 to change, 3 to destroy."
	planCompletedPattern = `Plan: (?P<add_count>\d+) to add, (?P<change_count>\d+) to change, (?P<destroy_count>\d+) to destroy\.`

	// "<addr>[ (<generation>)]: Creating...[ [key=value]]"
	applyStartedPattern = `^(?P<address>.+?)(?: \((?P<generation>[^)]*)\))?: (?P<action>Destroying|Creating|Modifying|Reading)\.\.\.(?: \[(?P<id_key>[^=\]]+)=(?P<id_value>[^\]]+)\])?$`

	// "<addr>: Still creating... [[key=value, ]10s elapsed]"
	applyProgressPattern = `^(?P<address>.+?)(?: \((?P<generation>[^)]*)\))?: Still (?P<action>modifying|destroying|creating|reading)\.\.\. \[(?:(?P<id_key>[^=\]]+)=(?P<id_value>[^\]]+?), )?(?P<elapsed>\d+\w+) elapsed\]`

	// "<addr>: Creation complete after 12s[ [key=value]]"
	applyDonePattern = `^(?P<address>.+?)(?: \((?P<generation>[^)]*)\))?: (?P<action>Modifications|Destruction|Creation|Read) complete after (?P<elapsed>\d+\w+)(?: \[(?P<id_key>[^=\]]+)=(?P<id_value>[^\]]+)\])?$`

	// "Apply complete! Resources: [1 imported, ]2 added, 1 changed, 0 destroyed."
	applyCompletedPattern = `Apply complete! Resources: (?:\d+ imported, )?(?P<add_count>\d+) added, (?P<change_count>\d+) changed, (?P<destroy_count>\d+) destroyed\.`

	// "Destroy complete! Resources: 3 destroyed."
	destroyCompletedPattern = `Destroy complete! Resources: (?P<destroy_count>\d+) destroyed\.`
)

// Classifier turns lines of terraform output into events. It is immutable
// after construction and safe for concurrent use.
type Classifier struct {
	planChange       *regexp.Regexp
	planCompleted    *regexp.Regexp
	applyStarted     *regexp.Regexp
	applyProgress    *regexp.Regexp
	applyDone        *regexp.Regexp
	applyCompleted   *regexp.Regexp
	destroyCompleted *regexp.Regexp

	// Tried in order by ApplyLine.
	applyResource []resourcePattern
	applySummary  []*regexp.Regexp
}

type resourcePattern struct {
	re     *regexp.Regexp
	status models.ResourceStatus
}

// NewClassifier compiles the pattern table.
func NewClassifier() (*Classifier, error) {
	c := &Classifier{}
	table := []struct {
		name string
		expr string
		dst  **regexp.Regexp
	}{
		{"plan_change", planChangePattern, &c.planChange},
		{"plan_completed", planCompletedPattern, &c.planCompleted},
		{"apply_started", applyStartedPattern, &c.applyStarted},
		{"apply_progress", applyProgressPattern, &c.applyProgress},
		{"apply_done", applyDonePattern, &c.applyDone},
		{"apply_completed", applyCompletedPattern, &c.applyCompleted},
		{"destroy_completed", destroyCompletedPattern, &c.destroyCompleted},
	}

	for _, p := range table {
		re, err := regexp.Compile(p.expr)
		if err != nil {
			return nil, apperrors.NewPatternError(p.name, err)
		}
		*p.dst = re
	}

	c.applyResource = []resourcePattern{
		{c.applyStarted, models.StatusStarted},
		{c.applyProgress, models.StatusInProgress},
		{c.applyDone, models.StatusDone},
	}
	c.applySummary = []*regexp.Regexp{c.applyCompleted, c.destroyCompleted}
	return c, nil
}

// PlanLine classifies a line of `terraform plan` stdout. Lines that match
// neither a planned change nor the summary still come back as Planned.
func (c *Classifier) PlanLine(line string) models.TerraformEvent {
	if caps, ok := match(c.planChange, line); ok {
		return resourceEvent(line, models.StatusPlanned, caps)
	}
	if caps, ok := match(c.planCompleted, line); ok {
		return summaryEvent(line, caps)
	}
	return models.TerraformEvent{
		Status:       models.StatusPlanned,
		Source:       line,
		SourceStream: models.Stdout,
	}
}

// ApplyLine classifies a line of `terraform apply` or `terraform destroy`
// stdout. Unmatched lines come back without a status.
func (c *Classifier) ApplyLine(line string) models.TerraformEvent {
	for _, p := range c.applyResource {
		if caps, ok := match(p.re, line); ok {
			return resourceEvent(line, p.status, caps)
		}
	}

	for _, re := range c.applySummary {
		if caps, ok := match(re, line); ok {
			return summaryEvent(line, caps)
		}
	}

	return models.TerraformEvent{
		Source:       line,
		SourceStream: models.Stdout,
	}
}

func resourceEvent(line string, status models.ResourceStatus, caps captures) models.TerraformEvent {
	return models.TerraformEvent{
		Change:       caps.changes(),
		Status:       status,
		ResourcePath: caps.text("address"),
		IDKey:        caps.text("id_key"),
		IDValue:      caps.text("id_value"),
		Source:       line,
		SourceStream: models.Stdout,
	}
}

func summaryEvent(line string, caps captures) models.TerraformEvent {
	return models.TerraformEvent{
		Status:       models.StatusCompleted,
		CreateCount:  caps.count("add_count"),
		UpdateCount:  caps.count("change_count"),
		DeleteCount:  caps.count("destroy_count"),
		Source:       line,
		SourceStream: models.Stdout,
	}
}
