package platform

import (
	"os"
	"os/exec"
)

var commonPythons = []string{"python3", "python"}

// FindPython returns $PYTHON, or the first Python interpreter on PATH.
func FindPython() string {
	if python := os.Getenv("PYTHON"); python != "" {
		return python
	}
	for _, name := range commonPythons {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return commonPythons[0]
}

// FindTool returns the value of the environment variable env if set,
// otherwise name resolved on PATH, otherwise name unchanged so the failure
// surfaces when the tool is run.
func FindTool(env, name string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return name
}
