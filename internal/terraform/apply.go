package terraform

import (
	"context"

	"tfevents/internal/models"
	"tfevents/internal/process"
)

// Init runs `terraform init`. Its output is passed through without
// classification.
func (t *Terraform) Init(ctx context.Context) (*process.Result, error) {
	return t.run(ctx, models.CommandInit, initArgs(), nil)
}

// Apply runs `terraform apply` against a plan saved by Plan.
func (t *Terraform) Apply(ctx context.Context, planPath string) (*process.Result, error) {
	if err := validatePlanPath(planPath); err != nil {
		return nil, err
	}
	return t.run(ctx, models.CommandApply, applyArgs(planPath), t.classifier.ApplyLine)
}

// Destroy runs `terraform destroy` without prompting.
func (t *Terraform) Destroy(ctx context.Context) (*process.Result, error) {
	return t.run(ctx, models.CommandDestroy, destroyArgs(), t.classifier.ApplyLine)
}

func initArgs() []string {
	return []string{"init", "-force-copy", "-no-color"}
}

func applyArgs(planPath string) []string {
	return []string{"apply", "-auto-approve", "-input=false", "-no-color", planPath}
}

func destroyArgs() []string {
	return []string{"destroy", "-auto-approve", "-no-color"}
}
