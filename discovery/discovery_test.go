package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	body []byte
	err  error
	url  string
}

func (f *fakeFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	f.url = url
	return f.body, f.err
}

const base = "https://proceedings.jacow.org/srf2019"

func TestSessionsFromTable(t *testing.T) {
	f := &fakeFetcher{body: []byte(`
<html><body><table>
<tr><td>MOFAA</td><td>Facility Reports I</td></tr>
<tr><td>MOFAB</td><td>Cavities Session</td></tr>
<tr><td></td><td>skipped, empty id</td></tr>
<tr><td>notup</td><td>skipped, lowercase id</td></tr>
<tr><td>single cell row</td></tr>
</table></body></html>`)}

	s := NewService(base, f, nil)
	sessions, err := s.Sessions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, base+"/html/sessi0n1.htm", f.url)
	require.Len(t, sessions, 2)
	assert.Equal(t, "MOFAA", sessions[0].ID)
	assert.Equal(t, "MOFAA - Facility Reports I", sessions[0].Name)
	assert.Equal(t, base+"/html/mofaa.htm", sessions[0].URL)
	assert.Equal(t, "MOFAB", sessions[1].ID)
}

func TestSessionsTextFallback(t *testing.T) {
	f := &fakeFetcher{body: []byte(`<html><body>
<pre>
MOFAA
Facility Reports I
some filler line
MOFAB
Cavities Session
</pre>
</body></html>`)}

	s := NewService(base, f, nil)
	sessions, err := s.Sessions(context.Background())
	require.NoError(t, err)

	require.Len(t, sessions, 2)
	assert.Equal(t, "MOFAA - Facility Reports I", sessions[0].Name)
	assert.Equal(t, "MOFAB - Cavities Session", sessions[1].Name)
}

func TestSessionsFetchError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("boom")}

	s := NewService(base, f, nil)
	_, err := s.Sessions(context.Background())
	assert.Error(t, err)
}

func TestSessionsEmptyPage(t *testing.T) {
	f := &fakeFetcher{body: []byte("<html><body></body></html>")}

	s := NewService(base, f, nil)
	sessions, err := s.Sessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
