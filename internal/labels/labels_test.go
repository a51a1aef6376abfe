package labels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Apple Braeburn\n\n  Banana  \r\nCherry\n"), 0o644))

	s := Load(path, Fallback{Prefix: "fruit", Count: 131}, nil)
	assert.Equal(t, []string{"Apple Braeburn", "Banana", "Cherry"}, s.Names())
	assert.Equal(t, path, s.Source())
	assert.Equal(t, "Banana", s.Name(1))
	assert.Equal(t, "class_7", s.Name(7))
}

func TestLoad_MissingFruitLabels(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "missing.txt"), Fallback{Prefix: "fruit", Count: 131}, nil)

	require.Equal(t, 131, s.Len())
	for i, name := range s.Names() {
		assert.Regexp(t, `^fruit_\d+$`, name)
		assert.Equal(t, name, s.Name(i))
	}
	assert.Equal(t, "fruit_0", s.Name(0))
	assert.Equal(t, "fruit_130", s.Name(130))
	assert.Equal(t, "placeholder", s.Source())
}

func TestLoad_EmptyPathUsesGenericLabels(t *testing.T) {
	s := Load("", Fallback{Prefix: "class", Count: 10}, nil)
	assert.Equal(t, 10, s.Len())
	assert.Equal(t, "class_9", s.Name(9))
}

func TestLoad_DirectoryDegrades(t *testing.T) {
	s := Load(t.TempDir(), Fallback{Prefix: "class", Count: 3}, nil)
	assert.Equal(t, []string{"class_0", "class_1", "class_2"}, s.Names())
}

func TestStore_NamesIsCopy(t *testing.T) {
	s := New("Dog", "Cat")
	names := s.Names()
	names[0] = "Wolf"
	assert.Equal(t, "Dog", s.Name(0))
}

func TestLoad_BlankFileYieldsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n  \n\n"), 0o644))

	s := Load(path, Fallback{Prefix: "class", Count: 10}, nil)
	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.Names())
	assert.Empty(t, s.Names())
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "classes.txt")
	require.NoError(t, Write(path, []string{"Dog", "Cat"}))

	s := Load(path, Fallback{Prefix: "class", Count: 10}, nil)
	assert.Equal(t, []string{"Dog", "Cat"}, s.Names())
}
