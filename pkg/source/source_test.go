package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"a 53621889042",
		"b 53621889043 extra column",
		"c 53621889044",
	}, "\n")

	records, err := Parse(strings.NewReader(input), 0)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 0, records[0].Position)
	assert.Equal(t, "53621889042", records[0].ID)
	assert.Equal(t, 1, records[1].Position)
	assert.Equal(t, "53621889043", records[1].ID)
	assert.Equal(t, 2, records[2].Position)
}

func TestParseSkipsShortLines(t *testing.T) {
	input := strings.Join([]string{
		"a 111",
		"malformed",
		"",
		"d 444",
	}, "\n")

	records, err := Parse(strings.NewReader(input), 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Skipped lines still advance the position
	assert.Equal(t, 0, records[0].Position)
	assert.Equal(t, 3, records[1].Position)
	assert.Equal(t, "444", records[1].ID)
}

func TestParseLimit(t *testing.T) {
	input := strings.Join([]string{
		"a 111",
		"malformed",
		"c 333",
		"d 444",
	}, "\n")

	// The limit counts lines consumed, not records produced
	records, err := Parse(strings.NewReader(input), 3)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "111", records[0].ID)
	assert.Equal(t, "333", records[1].ID)
}

func TestParseEmpty(t *testing.T) {
	records, err := Parse(strings.NewReader(""), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "all_data.txt")
	require.NoError(t, os.WriteFile(path, []byte("a 111\nb 222\n"), 0644))

	records, err := ParseFile(path, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "222", records[1].ID)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.txt"), 0)
	assert.Error(t, err)
}
