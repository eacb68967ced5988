// Package render produces the nim.cfg and aggregator files that pmgen writes
// into its work directory.
package render

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Prefix starts the name of every file pmgen generates.
const Prefix = "pmgen"

// Datestamp formats t the way generated-file headers show it.
func Datestamp(t time.Time) string {
	return t.Format("2006-01-02 at 15:04:05")
}

func header(sb *strings.Builder, t time.Time) {
	writeln(sb, `# Auto-generated by "pmgen" on `, Datestamp(t), ".")
	writeln(sb, `# Any changes will be overwritten by the next run of "pmgen".`)
}

func writeFile(dir, name, content string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func write(sb *strings.Builder, s ...string) {
	for _, str := range s {
		sb.WriteString(str)
	}
}

func writeln(sb *strings.Builder, s ...string) {
	write(sb, s...)
	sb.WriteByte('\n')
}
