package space

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
}

func TestSizeOf(t *testing.T) {
	instances := t.TempDir()
	a := NewAccountant(instances, t.TempDir(), nil)

	writeFile(t, filepath.Join(instances, "dbA", "graphstore.nodes"), 100)
	writeFile(t, filepath.Join(instances, "dbA", "sub", "graphstore.rels"), 50)
	writeFile(t, filepath.Join(instances, "dbA", "engine.log"), 25)

	assert.Equal(t, int64(175), a.SizeOf(filepath.Join(instances, "dbA"), All))

	logsOnly := func(name string) bool { return strings.HasSuffix(name, ".log") }
	assert.Equal(t, int64(25), a.SizeOf(filepath.Join(instances, "dbA"), logsOnly))
}

func TestSizeOfMissingPath(t *testing.T) {
	a := NewAccountant(t.TempDir(), t.TempDir(), nil)
	assert.Zero(t, a.SizeOf("/no/such/path", All))
}

func TestClassify(t *testing.T) {
	instances := t.TempDir()
	a := NewAccountant(instances, t.TempDir(), nil)

	db := filepath.Join(instances, "dbA")
	writeFile(t, filepath.Join(db, "graphstore.nodes"), 100)
	writeFile(t, filepath.Join(db, "graphstore.relationships"), 200)
	writeFile(t, filepath.Join(db, "schema", "index.1"), 30)
	writeFile(t, filepath.Join(db, "temporal.node.db"), 40)
	writeFile(t, filepath.Join(db, "temporal.node.index.db"), 4)
	writeFile(t, filepath.Join(db, "temporal.relationship.db"), 50)
	writeFile(t, filepath.Join(db, "temporal.relationship.index.db"), 5)
	writeFile(t, filepath.Join(db, "engine.log"), 7)

	u := a.Classify("dbA")
	assert.Equal(t, int64(300), u.Primary)
	assert.Equal(t, int64(30), u.IndexSchema)
	assert.Equal(t, int64(40), u.TemporalNodeData)
	assert.Equal(t, int64(4), u.TemporalNodeIndex)
	assert.Equal(t, int64(50), u.TemporalRelData)
	assert.Equal(t, int64(5), u.TemporalRelIndex)
	assert.Equal(t, int64(7), u.Other)
	assert.Equal(t, int64(436), u.Total())
}

func TestClassifyMissingInstance(t *testing.T) {
	a := NewAccountant(t.TempDir(), t.TempDir(), nil)
	u := a.Classify("ghost")
	assert.Zero(t, u.Total())
}

func TestReportFor(t *testing.T) {
	instances := t.TempDir()
	logs := t.TempDir()
	a := NewAccountant(instances, logs, nil)

	writeFile(t, filepath.Join(instances, "dbA", "graphstore.nodes"), 100)
	writeFile(t, filepath.Join(instances, "dbA", "engine.log"), 20)
	writeFile(t, filepath.Join(logs, "alice.log"), 10)

	report := a.ReportFor("alice", "dbA")
	assert.Equal(t, "dbA", report.Instance)
	assert.Equal(t, int64(100), report.Usage.Primary)
	assert.Equal(t, int64(20), report.EngineLog)
	assert.Equal(t, int64(10), report.AccessLog)
	assert.Equal(t, "alice", report.AccessLogUser)

	// Missing logs are zero, not errors.
	report = a.ReportFor("bob", "dbB")
	assert.Zero(t, report.EngineLog)
	assert.Zero(t, report.AccessLog)
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		{2 * 1024 * 1024 * 1024 * 1024, "2.0 TB"},
		{1 << 50, "1.0 PB"},
		{1 << 60, "1.0 EB"},
		{9223372036854775807, "8.0 EB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanBytes(tt.n))
	}
}
