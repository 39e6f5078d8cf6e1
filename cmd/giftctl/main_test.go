package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popov-vn/ai-agent/internal/persona"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPersonasCommand(t *testing.T) {
	out, err := execute(t, "personas")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(persona.All())+1)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, out, string(persona.UniversalGuru))
}

func TestResizeCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	outPath := filepath.Join(dir, "out.png")

	src := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for x := 0; x < 20; x++ {
		for y := 0; y < 10; y++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	f, err := os.Create(in)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	out, err := execute(t, "resize", "--width", "8", "--height", "4", in, outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "8x4")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 4, cfg.Height)
}

func TestResizeCommandNeedsTwoArgs(t *testing.T) {
	_, err := execute(t, "resize", "only-one.png")
	require.Error(t, err)
}

func TestRecommendRejectsShortDescription(t *testing.T) {
	_, err := execute(t, "recommend", "кот")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestPriceRequiresProduct(t *testing.T) {
	_, err := execute(t, "price")
	require.Error(t, err)
}
