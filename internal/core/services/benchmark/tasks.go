package benchmark

// Task is a single prompt of the benchmark suite. Name is the key of the per-task score.
type Task struct {
	Name   string `mapstructure:"name" yaml:"name" json:"name" validate:"required"`
	Prompt string `mapstructure:"prompt" yaml:"prompt" json:"prompt" validate:"required"`
}

// DefaultTasks returns the built-in suite.
func DefaultTasks() []Task {
	return []Task{
		{Name: "Coding", Prompt: "Write a python function for quicksort. Only the code."},
		{Name: "Math", Prompt: "Solve: 123 * 45 + 67. Only the number."},
		{Name: "Reasoning", Prompt: "If A is taller than B, and B is taller than C, who is the shortest? Only the letter."},
	}
}

// DefaultKeywords mark model families known to be cost efficient.
func DefaultKeywords() []string {
	return []string{"flash", "mini", "70b", "llama-3.1"}
}

const (
	DefaultSampleSize = 10
	DefaultMaxTokens  = 100
)
