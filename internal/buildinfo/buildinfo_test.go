package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrint(t *testing.T) {
	oldV, oldD, oldC := Version, Date, Commit
	t.Cleanup(func() { Version, Date, Commit = oldV, oldD, oldC })

	var buf bytes.Buffer
	Print(&buf, "nestkeyd")
	assert.Equal(t, "nestkeyd\nBuild version: N/A\nBuild date: N/A\nBuild commit: N/A\n", buf.String())

	Version, Date, Commit = "v1.2.0", "2026-10-01", "abc123"
	buf.Reset()
	Print(&buf, "nestkey")
	assert.Contains(t, buf.String(), "Build version: v1.2.0")
	assert.Contains(t, buf.String(), "Build date: 2026-10-01")
	assert.Contains(t, buf.String(), "Build commit: abc123")
}
