package platform

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nim-pymod/pmgen/internal/msg"
)

const sysconfigScript = `import json, sys, sysconfig
v = sysconfig.get_config_var
print(json.dumps({
    "include": sysconfig.get_path("include"),
    "platinclude": sysconfig.get_path("platinclude"),
    "abiflags": getattr(sys, "abiflags", ""),
    "VERSION": v("VERSION"),
    "LIBS": v("LIBS"),
    "SYSLIBS": v("SYSLIBS"),
    "Py_ENABLE_SHARED": v("Py_ENABLE_SHARED"),
    "LIBPL": v("LIBPL"),
    "PYTHONFRAMEWORK": v("PYTHONFRAMEWORK"),
    "LINKFORSHARED": v("LINKFORSHARED"),
}))`

// sysconfigVars mirrors the JSON printed by sysconfigScript. Unset config
// vars arrive as null, and Py_ENABLE_SHARED is an int.
type sysconfigVars struct {
	Include         string `json:"include"`
	PlatInclude     string `json:"platinclude"`
	ABIFlags        string `json:"abiflags"`
	Version         string `json:"VERSION"`
	Libs            string `json:"LIBS"`
	SysLibs         string `json:"SYSLIBS"`
	EnableShared    any    `json:"Py_ENABLE_SHARED"`
	LibPL           string `json:"LIBPL"`
	PythonFramework string `json:"PYTHONFRAMEWORK"`
	LinkForShared   string `json:"LINKFORSHARED"`
}

func (p *Probe) fromSysconfig(ctx context.Context) (Flags, bool) {
	out, err := p.python(ctx, sysconfigScript)
	if err != nil {
		msg.Warn("python sysconfig: %v", err)
		return Flags{}, false
	}
	var vars sysconfigVars
	if err := json.Unmarshal(out, &vars); err != nil {
		msg.Warn("python sysconfig: %v", err)
		return Flags{}, false
	}
	return vars.flags()
}

func (vars sysconfigVars) flags() (Flags, bool) {
	if vars.Version == "" || vars.Include == "" {
		return Flags{}, false
	}

	var flags Flags
	flags.Include = append(flags.Include, "-I"+vars.Include)
	if vars.PlatInclude != "" {
		flags.Include = append(flags.Include, "-I"+vars.PlatInclude)
	}

	// the LIBPL config dir is only needed when there is no shared libpython
	if !truthy(vars.EnableShared) && vars.LibPL != "" {
		flags.Link = append(flags.Link, "-L"+vars.LibPL)
	}
	flags.Link = append(flags.Link, "-lpython"+vars.Version+vars.ABIFlags)
	flags.Link = append(flags.Link, strings.Fields(vars.Libs)...)
	flags.Link = append(flags.Link, strings.Fields(vars.SysLibs)...)
	if vars.PythonFramework == "" {
		flags.Link = append(flags.Link, strings.Fields(vars.LinkForShared)...)
	}
	return flags, true
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != "" && val != "0"
	default:
		return true
	}
}
