package builder

import (
	"io"
	"testing"
	"testing/fstest"

	"github.com/nim-pymod/pmgen/internal/module"
	"github.com/nim-pymod/pmgen/internal/msg"
	"github.com/stretchr/testify/require"
)

func quiet(t *testing.T) {
	t.Helper()
	oldOut, oldErr := msg.Stdout, msg.Stderr
	msg.Stdout, msg.Stderr = io.Discard, io.Discard
	t.Cleanup(func() { msg.Stdout, msg.Stderr = oldOut, oldErr })
}

func samplePlan() *Plan {
	return &Plan{
		Modules: []module.Reference{
			{Arg: "lib/a", Path: "lib/a.nim", Name: "lib/a"},
			{Arg: "b.nim", Path: "b.nim", Name: "b"},
		},
		Basename: "b",
		Compiler: []string{"nim", "compile"},
		Symbols:  []string{"pmgen", "python3"},
		Self:     []string{"pmgen", "lib/a", "b.nim", "--python", "/usr/bin/python3"},
	}
}

func TestFirstGeneration(t *testing.T) {
	g := FirstGeneration(samplePlan())

	require.Equal(t, "--define:pmgen --define:python3 --noLinking --noMain", g.Variables[0].Value)
	require.Len(t, g.Targets, 1)
	target := g.Default()
	require.Equal(t, RuleTarget, target.Name)
	require.True(t, target.Phony)
	require.Equal(t, []string{"pmgenb_incl.nim", "../lib/a.nim", "../b.nim"}, target.Prerequisites)
	require.Equal(t, []string{"nim compile $(PMGEN) pmgenb_incl.nim"}, target.Recipe)

	require.NotNil(t, g.Lookup("allclean"))
	require.Equal(t, []string{"rm -f *.so"}, g.Lookup("soclean").Recipe)
	require.Contains(t, g.Lookup("clean").Recipe, "rm -f pmgen*_wrap.nim.cfg")
}

func TestDiscoverWrappers(t *testing.T) {
	quiet(t)
	fsys := fstest.MapFS{
		"pmgenb_wrap.nim":     {},
		"pmgena_wrap.nim":     {},
		"pmgen_wrap.nim":      {}, // no module name
		"pmgena_wrap.nim.cfg": {},
		"pmgenb_incl.nim":     {},
		"sub/pmgenc_wrap.nim": {},
		"pmgend_wrap.nim/x":   {}, // a directory
	}

	wrappers, err := DiscoverWrappers(fsys)
	require.NoError(t, err)
	require.Equal(t, []Wrapper{
		{Source: "pmgena_wrap.nim", Binary: "a.so"},
		{Source: "pmgenb_wrap.nim", Binary: "b.so"},
	}, wrappers)

	wrappers, err = DiscoverWrappers(fstest.MapFS{})
	require.NoError(t, err)
	require.Empty(t, wrappers)
}

func TestSecondGeneration(t *testing.T) {
	p := samplePlan()
	g := SecondGeneration(p, []Wrapper{
		{Source: "pmgena_wrap.nim", Binary: "a.so"},
		{Source: "pmgenb_wrap.nim", Binary: "b.so"},
	})

	all := g.Default()
	require.Equal(t, "all", all.Name)
	require.Equal(t, []string{"a.so", "b.so"}, all.Prerequisites)
	require.Empty(t, all.Recipe)

	compile := g.Lookup("a.so")
	require.Equal(t, []string{"pmgena_wrap.nim"}, compile.Prerequisites)
	require.Equal(t, []string{"nim compile pmgena_wrap.nim", "mv -f a.so ../"}, compile.Recipe)

	regen := g.Lookup("pmgenb_wrap.nim")
	require.Equal(t, []string{"pmgenb_incl.nim"}, regen.Prerequisites)
	require.Equal(t, []string{"nim compile $(PMGEN) pmgenb_incl.nim"}, regen.Recipe)

	aggregator := g.Lookup("pmgenb_incl.nim")
	require.Equal(t, []string{"../lib/a.nim", "../b.nim"}, aggregator.Prerequisites)
	require.Equal(t, []string{"cd .. ; pmgen lib/a b.nim --python /usr/bin/python3"}, aggregator.Recipe)
}

func TestSecondGenerationWithoutWrappers(t *testing.T) {
	g := SecondGeneration(samplePlan(), nil)

	all := g.Default()
	require.Equal(t, "all", all.Name)
	require.Empty(t, all.Prerequisites)
	require.Empty(t, all.Recipe)
	// all plus the aggregator rule
	require.Len(t, g.Targets, 2)
	require.NotNil(t, g.Lookup("pmgenb_incl.nim"))
}

func TestSecondGenerationQuotesSelf(t *testing.T) {
	p := samplePlan()
	p.Self = []string{"pmgen", "my mod.nim", "--pymodName", "fast", "--python", "/usr/bin/python3.11"}

	g := SecondGeneration(p, nil)
	require.Equal(t, []string{"cd .. ; pmgen 'my mod.nim' --pymodName fast --python /usr/bin/python3.11"},
		g.Lookup("pmgenb_incl.nim").Recipe)
}
