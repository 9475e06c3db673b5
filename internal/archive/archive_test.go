package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ggokuldas06/LegalAI/internal/chat"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestRecordAndRecent(t *testing.T) {
	a := openTestArchive(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, prompt := range []string{"first", "second", "third"} {
		require.NoError(t, a.Record(chat.Exchange{
			Mode:      chat.ModeSummarizer,
			Prompt:    prompt,
			Response:  "resp " + prompt,
			TokensIn:  10 + i,
			TokensOut: 20 + i,
			LatencyMS: 100,
			ChatLogID: int64(1000 + i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := a.Recent("", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[0].Prompt, "newest first")
	assert.Equal(t, "first", got[2].Prompt)
	assert.Equal(t, 12, got[0].TokensIn)
	assert.EqualValues(t, 1002, got[0].ChatLogID)
}

func TestRecentFiltersByMode(t *testing.T) {
	a := openTestArchive(t)
	require.NoError(t, a.Record(chat.Exchange{Mode: chat.ModeSummarizer, Prompt: "a", Response: "ra"}))
	require.NoError(t, a.Record(chat.Exchange{Mode: chat.ModeCaseLaw, Prompt: "c", Response: "rc"}))

	got, err := a.Recent("C", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Prompt)
}

func TestDeleteAndClear(t *testing.T) {
	a := openTestArchive(t)
	require.NoError(t, a.Record(chat.Exchange{Mode: chat.ModeSummarizer, Prompt: "a", Response: "ra"}))
	require.NoError(t, a.Record(chat.Exchange{Mode: chat.ModeSummarizer, Prompt: "b", Response: "rb"}))

	got, err := a.Recent("", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NoError(t, a.Delete(got[0].ID))
	got, err = a.Recent("", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, a.Clear())
	got, err = a.Recent("", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, a.Record(chat.Exchange{Mode: chat.ModeSummarizer, Prompt: "keep", Response: "kept"}))
	require.NoError(t, a.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Recent("", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].Prompt)
}
