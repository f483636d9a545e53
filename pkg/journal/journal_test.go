package journal

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID  string `json:"id"`
	Seq int    `json:"seq"`
}

// readRecords 逐行解碼 journal 檔案
func readRecords(t *testing.T, path string) []record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var got []record
	decoder := json.NewDecoder(f)
	for {
		var r record
		err := decoder.Decode(&r)
		if errors.Is(err, io.EOF) {
			return got
		}
		require.NoError(t, err)
		got = append(got, r)
	}
}

func TestJournal_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.log")
	j, err := Open(path, WithSync())
	require.NoError(t, err)

	require.NoError(t, j.Append(record{ID: "a", Seq: 1}))
	require.NoError(t, j.Append(record{ID: "b", Seq: 2}))
	require.NoError(t, j.Close())

	// 重新開啟後資料仍在，新的寫入接在後面
	j, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(record{ID: "c", Seq: 3}))
	require.NoError(t, j.Close())

	assert.Equal(t, []record{{"a", 1}, {"b", 2}, {"c", 3}}, readRecords(t, path))
}

func TestJournal_OpenCreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.log")
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
	assert.Empty(t, readRecords(t, path))
}
