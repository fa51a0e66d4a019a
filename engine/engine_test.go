package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/jacow-mirror/srfcrawl/extract"
	"github.com/jacow-mirror/srfcrawl/output"
	"github.com/jacow-mirror/srfcrawl/proceedings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://proceedings.jacow.org/srf2019"

type fakeFetcher struct {
	pages map[string][]byte
}

func (f *fakeFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	body, ok := f.pages[url]
	if !ok {
		return nil, errors.New("fetch failed")
	}
	return body, nil
}

type fakeProber struct {
	available map[string]bool
}

func (f *fakeProber) Exists(ctx context.Context, url string) bool {
	return f.available[url]
}

type fakeRepository struct {
	saved   []proceedings.Paper
	flushed bool
}

func (r *fakeRepository) Save(sessionName string, papers ...proceedings.Paper) error {
	r.saved = append(r.saved, papers...)
	return nil
}

func (r *fakeRepository) Flush() error {
	r.flushed = true
	return nil
}

func sessionPage() []byte {
	return []byte(`<html><body><pre>
MOFAA1
Advances in SRF Cavities
12
A. Smith, B. Jones
Fermi National Accelerator Laboratory
We describe recent progress in superconducting RF cavity production and testing.
MOFAA2
Second Paper Title
MOFAA10
Late Addendum Paper
A. Nother, C. Ontributor
</pre></body></html>`)
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *fakeRepository) {
	t.Helper()

	layout, err := output.NewLayout(t.TempDir())
	require.NoError(t, err)

	prober := &fakeProber{available: map[string]bool{
		base + "/papers/mofaa1.pdf":     true,
		base + "/talks/mofaa1_talk.pdf": true,
		base + "/papers/mofaa2.pdf":     true,
	}}

	repo := &fakeRepository{}

	all := append([]Option{
		WithFetcher(&fakeFetcher{pages: map[string][]byte{
			base + "/html/mofaa.htm": sessionPage(),
		}}),
		WithExtractor(extract.NewExtractor(base, prober, nil)),
		WithWriter(output.NewWriter(layout, nil)),
		WithLayout(layout),
		WithRepository(repo),
	}, opts...)

	e, err := New(all...)
	require.NoError(t, err)

	return e, repo
}

func testSession() proceedings.Session {
	return proceedings.Session{
		ID:   "MOFAA",
		Name: "MOFAA - Facility Reports",
		URL:  base + "/html/mofaa.htm",
	}
}

func TestScrapeSessionOrderAndFields(t *testing.T) {
	e, _ := newTestEngine(t)

	result, stats, err := e.ScrapeSession(context.Background(), testSession())
	require.NoError(t, err)

	// segmenter order: ascending numeric suffix, not lexicographic
	require.Equal(t, 3, result.PaperCount())
	assert.Equal(t, "MOFAA1", result.Papers[0].PaperID)
	assert.Equal(t, "MOFAA2", result.Papers[1].PaperID)
	assert.Equal(t, "MOFAA10", result.Papers[2].PaperID)

	assert.Equal(t, "Advances in SRF Cavities", result.Papers[0].Title)
	assert.Equal(t, "12", result.Papers[0].PageNumber)
	assert.True(t, result.Papers[0].TalkAvailable)
	assert.True(t, result.Papers[0].PaperAvailable)
	assert.False(t, result.Papers[0].PosterAvailable)

	assert.Equal(t, 1, stats.SessionsProcessed)
	assert.Equal(t, 3, stats.TotalPapers)

	// counts match a recount
	assert.Equal(t, 2, result.AvailablePapers())
	assert.Equal(t, 1, result.AvailableTalks())
	assert.Equal(t, 0, result.AvailablePosters())
}

func TestScrapeSessionFetchErrorPropagates(t *testing.T) {
	e, _ := newTestEngine(t)

	_, _, err := e.ScrapeSession(context.Background(), proceedings.Session{
		ID:  "ZZZZZ",
		URL: base + "/html/zzzzz.htm",
	})
	assert.Error(t, err)
}

func TestRunSkipsFailedSessions(t *testing.T) {
	e, repo := newTestEngine(t)

	sessions := []proceedings.Session{
		{ID: "BAD", Name: "BAD - broken", URL: base + "/html/bad.htm"},
		testSession(),
	}

	results, stats, err := e.Run(context.Background(), sessions)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "MOFAA", results[0].Session.ID)
	assert.Equal(t, 1, stats.SessionsProcessed)
	assert.Equal(t, 3, stats.TotalPapers)
	assert.Equal(t, 1, stats.Errors)

	assert.Len(t, repo.saved, 3)
	assert.True(t, repo.flushed)
}

func TestRunCancelled(t *testing.T) {
	e, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, _, err := e.Run(ctx, []proceedings.Session{testSession()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestRunWithPaperWorkersKeepsOrder(t *testing.T) {
	e, _ := newTestEngine(t, WithPaperWorkers(4))

	result, _, err := e.ScrapeSession(context.Background(), testSession())
	require.NoError(t, err)

	require.Equal(t, 3, result.PaperCount())
	assert.Equal(t, "MOFAA1", result.Papers[0].PaperID)
	assert.Equal(t, "MOFAA2", result.Papers[1].PaperID)
	assert.Equal(t, "MOFAA10", result.Papers[2].PaperID)
}

func TestScrapeSessionCancelledWithWorkersDropsUnprocessed(t *testing.T) {
	e, _ := newTestEngine(t, WithPaperWorkers(4))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, stats, err := e.ScrapeSession(ctx, testSession())
	require.NoError(t, err)

	// nothing was launched, so no zero-value records may survive
	assert.Equal(t, 0, result.PaperCount())
	assert.Equal(t, 0, stats.TotalPapers)
	for _, p := range result.Papers {
		assert.NotEmpty(t, p.PaperID)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
}
