package settings

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "pymod.cfg"))
	require.NoError(t, err)
	require.Empty(t, s.Get(SectionAll, KeyAddModulePath))

	release, err := s.Any(SectionAll, KeySetIsRelease)
	require.NoError(t, err)
	require.False(t, release)
}

func TestLoadINI(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pymod.cfg", `[all]
nimSetIsRelease = false
nimSetIsRelease: Yes
nimAddModulePath = "../shared"
nimAddModulePath = """/opt/nim # not a comment"""
nimAddModulePath = /usr/lib/nim

[other]
key = value
`)
	s, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, []string{"../shared", "/opt/nim # not a comment", "/usr/lib/nim"},
		s.Get(SectionAll, KeyAddModulePath))
	// keys are case-insensitive
	require.Equal(t, s.Get(SectionAll, "NIMADDMODULEPATH"), s.Get(SectionAll, KeyAddModulePath))

	bools, err := s.GetBoolean(SectionAll, KeySetIsRelease)
	require.NoError(t, err)
	require.Equal(t, []bool{false, true}, bools)

	release, err := s.Any(SectionAll, KeySetIsRelease)
	require.NoError(t, err)
	require.True(t, release)

	require.Equal(t, []string{"value"}, s.Get("other", "key"))
	require.Nil(t, s.Get("missing", "key"))
}

func TestGetBooleanRejectsUnknownToken(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pymod.cfg", "[all]\nnimSetIsRelease = maybe\n")
	s, err := Load(path)
	require.NoError(t, err)

	_, err = s.GetBoolean(SectionAll, KeySetIsRelease)
	require.ErrorIs(t, err, ErrConfigParse)
	require.ErrorContains(t, err, "maybe")
}

func TestGetBooleanVocabulary(t *testing.T) {
	s := New()
	for _, v := range []string{"1", "YES", "true", "On", `"false"`, "no", "OFF", "0"} {
		s.Add(SectionAll, "flag", v)
	}
	got, err := s.GetBoolean(SectionAll, "flag")
	require.NoError(t, err)
	require.Equal(t, []bool{true, true, true, true, false, false, false, false}, got)
}

func TestStripQuotes(t *testing.T) {
	require.Equal(t, "a", StripQuotes(`"a"`))
	require.Equal(t, "a", StripQuotes(`"""a"""`))
	require.Equal(t, "", StripQuotes(`""`))
	require.Equal(t, `"a`, StripQuotes(`"a`))
	require.Equal(t, "a", StripQuotes("a"))
}

func TestLoadTOMLWithConditions(t *testing.T) {
	data := []byte(`
[all]
nimSetIsRelease = true
nimAddModulePath = ["../shared", "/abs"]

[all."target_os == '` + runtime.GOOS + `'"]
nimAddModulePath = ["../host"]

[all."target_os == 'plan9-never'"]
nimAddModulePath = ["../never"]
`)
	s, err := parseTOML(data, NewEnv())
	require.NoError(t, err)
	require.Equal(t, []string{"../shared", "/abs", "../host"}, s.Get(SectionAll, KeyAddModulePath))

	release, err := s.Any(SectionAll, KeySetIsRelease)
	require.NoError(t, err)
	require.True(t, release)
}

func TestLoadTOMLEnviron(t *testing.T) {
	env := Env{TargetOS: "linux", TargetArch: "amd64", Environ: map[string]string{"PMGEN_RELEASE": "1"}}
	s, err := parseTOML([]byte(`
[all."environ.PMGEN_RELEASE == '1'"]
nimSetIsRelease = "yes"
`), env)
	require.NoError(t, err)
	release, err := s.Any(SectionAll, KeySetIsRelease)
	require.NoError(t, err)
	require.True(t, release)
}

func TestLoadTOMLErrors(t *testing.T) {
	_, err := parseTOML([]byte("[all\n"), NewEnv())
	require.ErrorIs(t, err, ErrConfigParse)

	_, err = parseTOML([]byte(`[all."no such var"]`+"\nx = 1\n"), NewEnv())
	require.ErrorIs(t, err, ErrConfigParse)
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, filepath.Join(dir, DefaultFile), Find(dir, ""))

	writeFile(t, dir, TOMLFile, "")
	require.Equal(t, filepath.Join(dir, TOMLFile), Find(dir, ""))

	writeFile(t, dir, DefaultFile, "")
	require.Equal(t, filepath.Join(dir, DefaultFile), Find(dir, ""))

	require.Equal(t, "custom.cfg", Find(dir, "custom.cfg"))
}
