package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved", "submissions.jsonl")
	j := NewJournal(path)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, j.Append(map[string]int{"n": n}))
		}(i)
	}
	wg.Wait()

	f, err := os.Open(j.Path())
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]int
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		lines++
	}
	assert.Equal(t, 10, lines)
}

func TestJournal_AppendRejectsUnencodable(t *testing.T) {
	j := NewJournal(filepath.Join(t.TempDir(), "j.jsonl"))
	assert.Error(t, j.Append(map[string]any{"ch": make(chan int)}))
}
