package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAssignments(t *testing.T) {
	out, err := ParseAssignments([]string{"city=Hamburg", "note=a=b", "fax="})
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"city": "Hamburg",
		"note": "a=b",
		"fax":  "",
	}, out)

	_, err = ParseAssignments([]string{"city"})
	require.Error(t, err)
	_, err = ParseAssignments([]string{"=Hamburg"})
	require.Error(t, err)
}

func TestFormatSize(t *testing.T) {
	table := []struct {
		size     int64
		expected string
	}{
		{size: 0, expected: "0 B"},
		{size: 1023, expected: "1023 B"},
		{size: 1024, expected: "1.0 KiB"},
		{size: 1536, expected: "1.5 KiB"},
		{size: 5 * 1024 * 1024, expected: "5.0 MiB"},
	}
	for _, test := range table {
		require.Equal(t, test.expected, FormatSize(test.size))
	}
}
