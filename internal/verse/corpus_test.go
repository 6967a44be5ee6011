package verse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `[
  {"title": "静夜思", "paragraphs": ["床前明月光，疑是地上霜。", "举头望明月，低头思故乡。"]},
  {"title": "早发白帝城", "paragraphs": ["朝辞白帝彩云间，千里江陵一日还。"]},
  {"title": "重复", "paragraphs": ["床前明月光，疑是地上霜。", "短句。"]}
]`

func TestClean(t *testing.T) {
	assert.Equal(t, "床前明月光疑是地上霜", Clean(" 床前明月光，疑是地上霜。abc 1"))
	assert.Equal(t, "", Clean("..."))
}

func TestAllIdeographs(t *testing.T) {
	assert.True(t, AllIdeographs("明月"))
	assert.False(t, AllIdeographs("明月。"))
	assert.False(t, AllIdeographs(""))
}

func TestVerseHelpers(t *testing.T) {
	v := Verse("床前明月光疑是地上霜")
	assert.Equal(t, 10, v.Len())
	assert.Equal(t, '明', v.Runes()[2])
	assert.Equal(t, "床前明月光疑是地上霜", v.String())
}

func TestParseRecords_FiltersAndDedups(t *testing.T) {
	vs, err := ParseRecords(strings.NewReader(sample), LengthFive)
	require.NoError(t, err)
	assert.Equal(t, []Verse{"床前明月光疑是地上霜", "举头望明月低头思故乡"}, vs)

	vs, err = ParseRecords(strings.NewReader(sample), LengthSeven)
	require.NoError(t, err)
	assert.Equal(t, []Verse{"朝辞白帝彩云间千里江陵一日还"}, vs)
}

func TestParseRecords_Malformed(t *testing.T) {
	_, err := ParseRecords(strings.NewReader(`{"title":`), LengthFive)
	assert.Error(t, err)
}

func TestLoad_FileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(sample), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"),
		[]byte(`[{"paragraphs": ["春眠不觉晓，处处闻啼鸟。"]}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	vs, err := Load(filepath.Join(dir, "a.json"), LengthFive)
	require.NoError(t, err)
	assert.Len(t, vs, 2)

	vs, err = Load(dir, LengthFive)
	require.NoError(t, err)
	assert.Equal(t, []Verse{"床前明月光疑是地上霜", "举头望明月低头思故乡", "春眠不觉晓处处闻啼鸟"}, vs)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("", 7)
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"), LengthFive)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"paragraphs": ["短句。"]}]`), 0o644))
	_, err = Load(path, LengthFive)
	assert.ErrorIs(t, err, ErrNoVerses)
}

func TestLoad_EmbeddedDefault(t *testing.T) {
	five, err := Load("", LengthFive)
	require.NoError(t, err)
	assert.Contains(t, five, Verse("床前明月光疑是地上霜"))

	seven, err := Load("", LengthSeven)
	require.NoError(t, err)
	assert.Contains(t, seven, Verse("朝辞白帝彩云间千里江陵一日还"))
	for _, v := range seven {
		assert.Equal(t, LengthSeven, v.Len())
	}
}
