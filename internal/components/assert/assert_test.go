package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotNil(t *testing.T) {
	require.NotPanics(t, func() { NotNil(struct{}{}, "value") })
	require.PanicsWithValue(t, "expected tel to be not nil", func() { NotNil(nil, "tel") })
}

func TestNotEmptyStr(t *testing.T) {
	require.NotPanics(t, func() { NotEmptyStr("webdav.school.example", "endpoint") })
	require.PanicsWithValue(t, "expected endpoint to be non-empty", func() { NotEmptyStr("", "endpoint") })
}
