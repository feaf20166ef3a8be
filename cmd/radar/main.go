package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nulzo/model-radar/internal/core/domain"
)

// Exit codes for different failure modes
const (
	ExitSuccess   = 0
	ExitRunFailed = 1 // the pipeline ran and halted on a stage
	ExitError     = 2 // configuration or runtime error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var stageErr *domain.StageError
		if errors.As(err, &stageErr) {
			os.Exit(ExitRunFailed)
		}
		os.Exit(ExitError)
	}
}
