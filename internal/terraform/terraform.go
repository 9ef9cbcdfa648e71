// Package terraform drives the terraform CLI through its lifecycle and turns
// its console output into structured events.
package terraform

import (
	"time"

	"tfevents/internal/models"
	"tfevents/internal/process"
)

// Terraform runs terraform commands in one working directory and forwards
// every output line to a sink as an event.
type Terraform struct {
	process    *process.Process
	classifier *Classifier
	sink       models.EventSink
}

// New creates a Terraform facade. The binary is not checked until a command
// runs. A nil sink discards events.
func New(binaryPath, workingDir string, env map[string]string, timeout time.Duration, sink models.EventSink, opts ...process.Option) (*Terraform, error) {
	classifier, err := NewClassifier()
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = models.SinkFunc(func(models.TerraformEvent) {})
	}

	return &Terraform{
		process:    process.New(binaryPath, workingDir, env, timeout, opts...),
		classifier: classifier,
		sink:       sink,
	}, nil
}
