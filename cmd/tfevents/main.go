package main

import (
	"tfevents/internal/cli"
	apperrors "tfevents/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		apperrors.ExitWithError(err, 1)
	}
}
