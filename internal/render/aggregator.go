package render

import (
	"path"
	"strings"
	"time"

	"github.com/nim-pymod/pmgen/internal/module"
)

// AggregatorFile returns the aggregator file name for basename.
func AggregatorFile(basename string) string {
	return Prefix + basename + "_incl" + module.Ext
}

// AggregatorBasename is declared if set, otherwise the base name of the last
// reference: a multi-module build is named after its final module.
func AggregatorBasename(refs []module.Reference, declared string) string {
	if declared != "" {
		return declared
	}
	if len(refs) == 0 {
		return ""
	}
	return path.Base(refs[len(refs)-1].ParentName())
}

// Aggregator renders the file that includes every module into one
// compilation unit and registers each for wrapper generation. Module names
// are written relative to the work directory one level down.
func Aggregator(refs []module.Reference, declared string, t time.Time) (content, basename string) {
	var sb strings.Builder
	header(&sb, t)
	writeln(&sb)
	writeln(&sb, "# These must be included rather than imported, so the static global variables")
	writeln(&sb, "# can be evaluated at compile time.")
	writeln(&sb, "include pymodpkg/private/includes/realmacrodefs")
	writeln(&sb)
	writeln(&sb, "include pymodpkg/private/includes/pyobjecttypedefs")
	writeln(&sb)
	writeln(&sb, "# Modules to be imported by the auto-generated Nim wrappers.")
	for _, ref := range refs {
		writeln(&sb, `registerNimModuleToImport("`, ref.ParentName(), `")`)
	}
	writeln(&sb)
	writeln(&sb, "# Modules to be included into this Nim code, so their procs can be exportpy'd.")
	for i, ref := range refs {
		if i > 0 {
			writeln(&sb)
		}
		writeln(&sb, "include ", ref.ParentName())
	}
	return sb.String(), AggregatorBasename(refs, declared)
}

// WriteAggregator renders the aggregator into dir and returns its basename.
func WriteAggregator(dir string, refs []module.Reference, declared string, t time.Time) (string, error) {
	content, basename := Aggregator(refs, declared, t)
	if _, err := writeFile(dir, AggregatorFile(basename), content); err != nil {
		return "", err
	}
	return basename, nil
}
