package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/giangph58/Automated-ACB/forecast"
	"github.com/giangph58/Automated-ACB/internal/testutil/deckassert"
)

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	iconDir := filepath.Join(dir, "icons")
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(iconDir, 0o755))
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	templatePath := deckassert.WriteTemplate(t, dir, 10)
	deckassert.WriteIcons(t, iconDir, "hs_hc_nr_nt.png")

	inputPath := filepath.Join(dir, "TayNinh_tuan27.xlsx")
	deckassert.WriteWorkbook(t, inputPath, deckassert.ForecastGrid(
		"huyện cần giờ - khu đông",
		"huyện nhà bè - khu tây",
	))

	gen := New(Options{})
	paths, err := gen.Generate(context.Background(), inputPath, outDir, templatePath, iconDir)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	assert.Equal(t, "ACB_TayNinh_Huyện Cần Giờ.pptx", filepath.Base(paths[0]))
	assert.Equal(t, "ACB_TayNinh_Huyện Nhà Bè.pptx", filepath.Base(paths[1]))

	for _, p := range paths {
		_, err := os.Stat(p)
		require.NoError(t, err)
	}

	deckassert.AssertEntryContains(t, paths[0], "ppt/slides/slide1.xml",
		"Huyện Cần Giờ",
		"Từ ngày 30/6 - 9/7 năm 2025",
		"Ngày 30/06/2025",
		"acbIcon",
	)
	deckassert.AssertEntryContains(t, paths[0], "[Content_Types].xml", `Extension="png"`)
}

func TestGenerateMalformedInput(t *testing.T) {
	dir := t.TempDir()
	templatePath := deckassert.WriteTemplate(t, dir, 10)

	inputPath := filepath.Join(dir, "broken.xlsx")
	deckassert.WriteWorkbook(t, inputPath, [][]string{
		{"không có", "đánh dấu"},
	})

	gen := New(Options{})
	_, err := gen.Generate(context.Background(), inputPath, dir, templatePath, dir)
	require.ErrorIs(t, err, forecast.ErrMalformedInput)
	assert.Contains(t, err.Error(), "broken.xlsx")
}

func TestGenerateAbortsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	templatePath := deckassert.WriteTemplate(t, dir, 10)

	// Icons are never written, so every matched icon path fails to load.
	iconDir := filepath.Join(dir, "icons")
	require.NoError(t, os.MkdirAll(iconDir, 0o755))

	inputPath := filepath.Join(dir, "TayNinh_tuan27.xlsx")
	deckassert.WriteWorkbook(t, inputPath, deckassert.ForecastGrid("huyện a - x", "huyện b - y"))

	gen := New(Options{})
	paths, err := gen.Generate(context.Background(), inputPath, outDir, templatePath, iconDir)
	require.Error(t, err)
	assert.Empty(t, paths)
	assert.Contains(t, err.Error(), `location "huyện a - x"`)
	assert.NotContains(t, err.Error(), `location "huyện b - y"`)
}

func TestGenerateContinueOnError(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	templatePath := deckassert.WriteTemplate(t, dir, 10)
	iconDir := filepath.Join(dir, "icons")
	require.NoError(t, os.MkdirAll(iconDir, 0o755))

	inputPath := filepath.Join(dir, "TayNinh_tuan27.xlsx")
	deckassert.WriteWorkbook(t, inputPath, deckassert.ForecastGrid("huyện a - x", "huyện b - y"))

	gen := New(Options{ContinueOnError: true})
	paths, err := gen.Generate(context.Background(), inputPath, outDir, templatePath, iconDir)
	require.Error(t, err)
	assert.Empty(t, paths)

	// Both locations were attempted and both failures are reported.
	assert.Contains(t, err.Error(), `location "huyện a - x"`)
	assert.Contains(t, err.Error(), `location "huyện b - y"`)
}

func TestGenerateCancelled(t *testing.T) {
	dir := t.TempDir()
	templatePath := deckassert.WriteTemplate(t, dir, 10)
	inputPath := filepath.Join(dir, "TayNinh_tuan27.xlsx")
	deckassert.WriteWorkbook(t, inputPath, deckassert.ForecastGrid("huyện a - x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := New(Options{})
	_, err := gen.Generate(ctx, inputPath, dir, templatePath, dir)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDistrictName(t *testing.T) {
	titler := cases.Title(language.Vietnamese)

	tests := []struct {
		in   string
		want string
	}{
		{"huyện cần giờ - khu đông", "Huyện Cần Giờ"},
		{"Huyện Nhà Bè", "Huyện Nhà Bè"},
		{"  thành phố thủ đức  - phía nam - phụ", "Thành Phố Thủ Đức"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, DistrictName(tc.in, titler), "input %q", tc.in)
	}

	// Idempotent on its own output.
	once := DistrictName("huyện cần giờ - khu đông", titler)
	assert.Equal(t, once, DistrictName(once, titler))
}

func TestProvince(t *testing.T) {
	assert.Equal(t, "TayNinh", Province("TayNinh_tuan27.xlsx"))
	assert.Equal(t, "HCM", Province("HCM_du_bao.xlsx"))
	assert.Equal(t, "dubao", Province("dubao.xlsx"))
}

func TestGenerateOutputNaming(t *testing.T) {
	got := fmt.Sprintf("ACB_%s_%s.pptx", Province("TayNinh_t27.xlsx"),
		DistrictName("huyện a - x", cases.Title(language.Vietnamese)))
	assert.Equal(t, "ACB_TayNinh_Huyện A.pptx", got)
}
