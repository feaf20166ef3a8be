package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrPrerequisiteMissing is returned when a stage is asked to run without its upstream snapshot.
	ErrPrerequisiteMissing = errors.New("prerequisite missing")
	// ErrRunInProgress rejects a pipeline run while another one is executing.
	ErrRunInProgress = errors.New("pipeline run already in progress")
	// ErrShuttingDown rejects a pipeline run once the process has started draining.
	ErrShuttingDown = errors.New("pipeline is shutting down")
	// ErrNoArtifact means a component finished without producing anything usable.
	ErrNoArtifact = errors.New("no usable artifact produced")
)

// Snapshot names one of the persisted tables.
type Snapshot string

const (
	SnapshotCatalog    Snapshot = "catalog"
	SnapshotBenchmarks Snapshot = "benchmarks"
	SnapshotRankings   Snapshot = "rankings"
)

// PrerequisiteError reports which upstream snapshot is absent.
type PrerequisiteError struct {
	Snapshot Snapshot
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("%s: %s snapshot is absent", ErrPrerequisiteMissing, e.Snapshot)
}

func (e *PrerequisiteError) Unwrap() error { return ErrPrerequisiteMissing }

// PrerequisiteMissing builds a PrerequisiteError for the given snapshot.
func PrerequisiteMissing(s Snapshot) error {
	return &PrerequisiteError{Snapshot: s}
}

// StageError halts the pipeline and names the failing stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ConfigError is fatal and aborts a run before any network call.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Problem implements RFC 9457
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`

	Log error `json:"-"`
}

func (p *Problem) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

func (p *Problem) MarshalJSON() ([]byte, error) {
	type Alias Problem

	data := make(map[string]interface{})

	for k, v := range p.Extensions {
		data[k] = v
	}

	stdJSON, _ := json.Marshal(Alias(*p))
	_ = json.Unmarshal(stdJSON, &data)

	return json.Marshal(data)
}

type ProblemOption func(*Problem)

// New creates a generic Problem
func New(status int, title, detail string, opts ...ProblemOption) *Problem {
	p := &Problem{
		Type:       "about:blank",
		Title:      title,
		Status:     status,
		Detail:     detail,
		Extensions: make(map[string]interface{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithExtension adds a custom key-value pair to the response
func WithExtension(key string, value interface{}) ProblemOption {
	return func(p *Problem) {
		p.Extensions[key] = value
	}
}

// WithLog attaches an internal error for server-side logging
func WithLog(err error) ProblemOption {
	return func(p *Problem) {
		p.Log = err
	}
}

// ValidationError creates a rich validation error
func ValidationError(validationErrors map[string]string) *Problem {
	return New(
		http.StatusBadRequest,
		"Validation Error",
		"One or more fields failed validation",
		WithExtension("errors", validationErrors),
	)
}

// BadRequestError creates a standard error for a bad request
func BadRequestError(detail string, opts ...ProblemOption) *Problem {
	return New(http.StatusBadRequest, "Bad Request", detail, opts...)
}

// InternalError creates a standard error for any internal server error
func InternalError(detail string, err error) *Problem {
	return New(http.StatusInternalServerError, "Internal Server Error", detail, WithLog(err))
}

// ToProblem maps pipeline errors onto HTTP problems.
func ToProblem(err error) *Problem {
	var problem *Problem
	if errors.As(err, &problem) {
		return problem
	}

	var prereq *PrerequisiteError
	switch {
	case errors.As(err, &prereq):
		return New(http.StatusConflict, "Prerequisite Missing", err.Error(),
			WithExtension("snapshot", prereq.Snapshot))
	case errors.Is(err, ErrRunInProgress):
		return New(http.StatusConflict, "Run In Progress", err.Error())
	case errors.Is(err, ErrShuttingDown):
		return New(http.StatusServiceUnavailable, "Shutting Down", err.Error())
	}

	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return New(http.StatusBadGateway, "Pipeline Stage Failed", err.Error(),
			WithExtension("stage", stageErr.Stage), WithLog(err))
	}

	return InternalError("An unexpected error occurred.", err)
}
