package terraform

import (
	"context"

	"tfevents/internal/models"
	"tfevents/internal/process"
)

// Plan runs `terraform plan` and saves the plan to planPath, relative to the
// working directory. Every stdout line is emitted as a plan event.
func (t *Terraform) Plan(ctx context.Context, planPath string) (*process.Result, error) {
	if err := validatePlanPath(planPath); err != nil {
		return nil, err
	}
	return t.run(ctx, models.CommandPlan, planArgs(planPath), t.classifier.PlanLine)
}

func planArgs(planPath string) []string {
	return []string{"plan", "-input=false", "-out=" + planPath, "-no-color"}
}
