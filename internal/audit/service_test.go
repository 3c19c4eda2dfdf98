package audit

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	entries    []Entry
	lastLimit  int
	lastOffset int
	lastFilter TimelineFilters
}

func (m *mockRepository) TimelineWindow(_ context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	m.lastFilter = filters
	m.lastLimit = limit
	m.lastOffset = offset
	if offset >= len(m.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.entries) {
		end = len(m.entries)
	}
	return m.entries[offset:end], nil
}

func (m *mockRepository) TimelineAll(_ context.Context, filters TimelineFilters) ([]Entry, error) {
	m.lastFilter = filters
	return m.entries, nil
}

func manyEntries(n int) []Entry {
	entries := make([]Entry, n)
	at := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := range entries {
		entries[i] = Entry{
			At:       at.Add(-time.Duration(i) * time.Hour),
			ActorID:  1,
			Action:   "sale.created",
			Entity:   "venta",
			EntityID: "42",
		}
	}
	return entries
}

func TestTimelineReportsNextPage(t *testing.T) {
	repo := &mockRepository{entries: manyEntries(25)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{})
	require.NoError(t, err)

	assert.Len(t, result.Entries, 20)
	assert.Equal(t, 21, repo.lastLimit, "should fetch one beyond the page size")
	assert.True(t, result.Paging.HasNext)
	assert.Equal(t, 2, result.Paging.NextPage)
	assert.Zero(t, result.Paging.PrevPage)
}

func TestTimelineLastPage(t *testing.T) {
	repo := &mockRepository{entries: manyEntries(25)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 2})
	require.NoError(t, err)

	assert.Len(t, result.Entries, 5)
	assert.Equal(t, 20, repo.lastOffset)
	assert.False(t, result.Paging.HasNext)
	assert.Equal(t, 1, result.Paging.PrevPage)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &mockRepository{entries: manyEntries(60)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{PageSize: 500})
	require.NoError(t, err)

	assert.Equal(t, 50, result.Paging.PageSize)
	assert.Equal(t, 51, repo.lastLimit)
}

func TestTimelineRejectsInvertedRange(t *testing.T) {
	svc := NewService(&mockRepository{})

	_, err := svc.Timeline(context.Background(), TimelineFilters{
		From: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrBadRange)
}

func TestExportWritesCSV(t *testing.T) {
	entries := []Entry{
		{
			At:         time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
			ActorID:    7,
			ActorEmail: "admin@steticsoft.test",
			Action:     "role.changed",
			Entity:     "rol",
			EntityID:   "3",
			Detail:     "nombre: Cajero -> Recepcionista",
		},
	}
	repo := &mockRepository{entries: entries}
	svc := NewService(repo)

	rows, err := svc.Export(context.Background(), TimelineFilters{Entity: "rol"})
	require.NoError(t, err)
	assert.Equal(t, "rol", repo.lastFilter.Entity)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "At,Actor ID,Actor Email,Action,Entity,Entity ID,Detail", lines[0])
	assert.Contains(t, lines[1], "2026-08-01T10:00:00Z")
	assert.Contains(t, lines[1], "admin@steticsoft.test")
	assert.Contains(t, lines[1], "nombre: Cajero -> Recepcionista")
}
