package scriptfill

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook creates an xlsx file whose first sheet holds rows
func writeWorkbook(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoadLibraryFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.xlsx")
	writeWorkbook(t, path, [][]string{
		{"材质", "颜色", "裤子动作", "空列"},
		{"棉", "红", "抬腿"},
		{"麻", "", "转身"},
		{" ", "蓝"},
	})

	result, err := LoadLibraryFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, result.Source)
	assert.Equal(t, []string{"材质", "颜色", "裤子动作"}, result.Library.Fields())
	assert.Equal(t, []string{"棉", "麻"}, result.Library.Pool("材质"))
	assert.Equal(t, []string{"红", "蓝"}, result.Library.Pool("颜色"))
	assert.False(t, result.Library.Has("空列"))

	assert.Equal(t, []string{"裤子动作"}, result.ProductColumns)
	assert.False(t, result.DefaultActions)
	assert.Equal(t, []string{"裤子动作"}, result.Actions.ProductTypes())
	assert.Equal(t, []string{"抬腿", "转身"}, result.Actions.Actions("裤子动作"))
	assert.Equal(t, "loaded 1 product types, 3 placeholder fields", result.Summary())
}

func TestReadLibraryXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "场景"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "海边"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "街头"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := ReadLibraryXLSX(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"海边", "街头"}, result.Library.Pool("场景"))
	assert.True(t, result.DefaultActions)
	assert.Equal(t, defaultProductTypes, result.Actions.ProductTypes())
}

func TestLoadLibraryFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.csv")
	content := "\ufeff材质,颜色,上衣\n棉,红,整理衣领\n麻,,\"拉伸袖口, 展示\"\n丝\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	result, err := LoadLibraryFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"材质", "颜色", "上衣"}, result.Library.Fields())
	assert.Equal(t, []string{"棉", "麻", "丝"}, result.Library.Pool("材质"))
	assert.Equal(t, []string{"红"}, result.Library.Pool("颜色"))
	assert.Equal(t, []string{"整理衣领", "拉伸袖口, 展示"}, result.Actions.Actions("上衣"))
	assert.Equal(t, []string{"上衣"}, result.ProductColumns)
}

func TestLoadLibraryFile_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadLibraryFile(filepath.Join(dir, "library.ods"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLibraryFile(filepath.Join(dir, "missing.xlsx"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgReadLibrary)
	})

	t.Run("not a workbook", func(t *testing.T) {
		path := filepath.Join(dir, "broken.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))
		_, err := LoadLibraryFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgReadLibrary)
	})

	t.Run("empty csv", func(t *testing.T) {
		path := filepath.Join(dir, "empty.csv")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		_, err := LoadLibraryFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgReadLibrary)
	})
}

func TestBuildLibrary(t *testing.T) {
	t.Run("duplicate headers merge", func(t *testing.T) {
		result, err := BuildLibrary([][]string{
			{"颜色", "颜色"},
			{"红", "蓝"},
			{"白"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"颜色"}, result.Library.Fields())
		assert.Equal(t, []string{"红", "白", "蓝"}, result.Library.Pool("颜色"))
	})

	t.Run("blank headers skipped", func(t *testing.T) {
		result, err := BuildLibrary([][]string{
			{"", "材质"},
			{"x", "棉"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"材质"}, result.Library.Fields())
	})

	t.Run("header only", func(t *testing.T) {
		result, err := BuildLibrary([][]string{{"材质"}})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Library.Len())
		assert.True(t, strings.HasPrefix(result.Summary(), "loaded 0 placeholder fields"))
	})
}

func TestEngine_LoadLibraryFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "library.xlsx")
	writeWorkbook(t, path, [][]string{
		{"材质", "外套"},
		{"羊毛", "披上外套"},
	})

	engine := MustNew(WithRand(&scriptedRand{}))
	result, err := engine.LoadLibraryFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Library.Len())

	out, err := engine.Preview(ctx, GenerateRequest{Template: "{材质}|{动作}"})
	require.NoError(t, err)
	assert.Equal(t, "羊毛|披上外套", out.Text)

	_, err = engine.LoadLibraryFile(filepath.Join(t.TempDir(), "x.txt"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, 2, engine.Library().Len(), "failed load keeps the current library")
}
