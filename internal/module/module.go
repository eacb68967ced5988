// Package module resolves command-line module references to Nim source files.
package module

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the Nim module file extension.
const Ext = ".nim"

var (
	ErrNotFound  = errors.New("file not found")
	ErrNoModules = errors.New("no Nim module names specified")
)

// Reference is one resolved module argument.
type Reference struct {
	Arg  string // as given on the command line
	Path string // relative path of the .nim file
	Name string // Path without the extension
}

// Parent returns Path as seen from a directory one level below the
// invocation directory.
func (r Reference) Parent() string { return dotdot(r.Path) }

// ParentName is like Parent but for Name.
func (r Reference) ParentName() string { return dotdot(r.Name) }

func dotdot(p string) string {
	return filepath.ToSlash(filepath.Join("..", p))
}

// Resolve maps each argument to a Reference. An argument that already ends in
// ".nim" must exist as given; any other argument must exist once ".nim" is
// appended.
func Resolve(args []string) ([]Reference, error) {
	if len(args) == 0 {
		return nil, ErrNoModules
	}
	refs := make([]Reference, 0, len(args))
	for _, arg := range args {
		file := arg
		if !strings.HasSuffix(arg, Ext) {
			file = arg + Ext
		}
		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, file)
			}
			return nil, err
		}
		rel, err := relpath(file)
		if err != nil {
			return nil, err
		}
		refs = append(refs, Reference{
			Arg:  arg,
			Path: rel,
			Name: strings.TrimSuffix(rel, Ext),
		})
	}
	return refs, nil
}

func relpath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Rel(cwd, abs)
}
