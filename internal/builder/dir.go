package builder

import (
	"fmt"
	"os"
)

// WithDir creates dir if needed, makes it the working directory while fn
// runs, and changes back afterwards whatever fn returns.
func WithDir(dir string, fn func() error) (err error) {
	prev, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.Chdir(dir); err != nil {
		return err
	}
	defer func() {
		if cerr := os.Chdir(prev); cerr != nil && err == nil {
			err = fmt.Errorf("restore working directory: %w", cerr)
		}
	}()
	return fn()
}
