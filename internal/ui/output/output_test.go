package output_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/corepm/internal/ui/output"
)

func TestColorProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile(os.Stdout), "NO_COLOR should force Ascii profile")

	t.Setenv("NO_COLOR", "")
	assert.Equal(t, termenv.Ascii, output.ColorProfile(new(bytes.Buffer)), "non-terminal writers get no colors")

	p := output.ColorProfile(os.Stdout)
	assert.True(t, p >= termenv.TrueColor && p <= termenv.Ascii, "should return a valid profile")
}

func TestNewRenderer(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	var buf bytes.Buffer
	r := output.NewRenderer(&buf)
	assert.Equal(t, termenv.Ascii, r.ColorProfile())
	assert.Equal(t, "core", r.NewStyle().Bold(true).Render("core"))
}
