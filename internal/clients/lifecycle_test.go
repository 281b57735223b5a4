package clients

import (
	"os"
	"path/filepath"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupEOLByMajorVersion(t *testing.T) {
	table := NewLifecycleTable("")

	assert.Equal(t, "2016-01-08", table.LookupEOL(&cdx.Component{Name: "jquery", Version: "1.12.4"}, nil))
	assert.Equal(t, "2020-01-01", table.LookupEOL(&cdx.Component{Name: "Python", Version: "2.7.18"}, nil))
	assert.Empty(t, table.LookupEOL(&cdx.Component{Name: "jquery", Version: "3.6.0"}, nil))
	assert.Empty(t, table.LookupEOL(&cdx.Component{Name: "unknown-pkg", Version: "1.0.0"}, nil))
	assert.Empty(t, table.LookupEOL(nil, nil))
}

func TestLookupEOLOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eol.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mylib@2: \"2025-06-30\"\njquery@1: \"1999-01-01\"\n"), 0o644))

	table := NewLifecycleTable(path)
	assert.Equal(t, "2025-06-30", table.LookupEOL(&cdx.Component{Name: "mylib", Version: "2.4.1"}, nil))
	// Overrides replace built-in entries.
	assert.Equal(t, "1999-01-01", table.LookupEOL(&cdx.Component{Name: "jquery", Version: "1.9.0"}, nil))
}

func TestLookupEOLMalformedOverrideKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eol.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":::not yaml"), 0o644))

	table := NewLifecycleTable(path)
	assert.Equal(t, "2016-01-08", table.LookupEOL(&cdx.Component{Name: "jquery", Version: "1.12.4"}, nil))
}

func TestMajorOf(t *testing.T) {
	assert.Equal(t, "4", majorOf("4.17.21"))
	assert.Equal(t, "2", majorOf("v2.0.0"))
	assert.Equal(t, "1", majorOf("1.0.0-beta"))
	assert.Empty(t, majorOf(""))
	assert.Empty(t, majorOf("latest"))
}
