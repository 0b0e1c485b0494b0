package output

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorSchemes(t *testing.T) {
	scheme := DefaultColorScheme()
	assert.NotNil(t, scheme.Method)
	assert.NotNil(t, scheme.StatusOK)
	assert.NotNil(t, scheme.Fired)

	plain := NoColorScheme()
	assert.Equal(t, "GET", plain.Method.Sprint("GET"))
	assert.Equal(t, "200 OK", plain.StatusOK.Sprint("200 OK"))
	assert.Equal(t, "boom", plain.Error.Sprint("boom"))
}

func TestIcons(t *testing.T) {
	assert.Equal(t, "✓", SuccessIcon(true))
	assert.Equal(t, "✗", ErrorIcon(true))
	assert.Equal(t, "ℹ", InfoIcon(true))

	assert.Contains(t, SuccessIcon(false), "✓")
	assert.Contains(t, ErrorIcon(false), "✗")
}

func TestShouldColor(t *testing.T) {
	assert.False(t, ShouldColor(true, os.Stdout))
	assert.False(t, ShouldColor(false, nil))

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	assert.False(t, ShouldColor(false, f), "regular files are not terminals")
}
