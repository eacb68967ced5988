package platform

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nim-pymod/pmgen/internal/msg"
)

// NumericIncludeDir is where NumPy keeps its C headers, relative to each of
// its installation paths.
const NumericIncludeDir = "core/include"

const numpyScript = `import json, numpy
print(json.dumps({"file": numpy.__file__, "path": list(numpy.__path__)}))`

type numpyInfo struct {
	File string   `json:"file"`
	Path []string `json:"path"`
}

// NumericPaths returns the installation paths of NumPy. An installation can
// be split across several directories.
func (p *Probe) NumericPaths(ctx context.Context) ([]string, error) {
	out, err := p.python(ctx, numpyScript)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to import Python module `numpy`: %v", ErrDependencyMissing, err)
	}
	var info numpyInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("%w: unable to import Python module `numpy`: %v", ErrDependencyMissing, err)
	}
	if len(info.Path) == 0 {
		return nil, fmt.Errorf("%w: numpy reports no installation paths", ErrDependencyMissing)
	}
	msg.Info("found NumPy installation at %s", info.File)
	msg.Detail("paths = %v", info.Path)
	return info.Path, nil
}
