package ezshare

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dcimsync/internal/domain"
	appErrors "dcimsync/internal/errors"
	"dcimsync/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page1 = `<html><body>
<img src="thumbnail?fname=DSCF0001.JPG&fdir=103_FUJI&ftype=0&time=1389464558">
<img src="thumbnail?fname=DSCF0002.JPG&fdir=103_FUJI&ftype=0&time=1389464600">
<div id="post"><a href="mphoto?page=2">next</a></div>
</body></html>`

const page2 = `<html><body>
<img src="thumbnail?fname=DSCF0003.RAF&fdir=104_FUJI&ftype=1">
</body></html>`

func newCard(t *testing.T, handler http.Handler) *Card {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	card, err := New(server.URL+"/", "mphoto", 2*time.Second, logging.Logger{})
	require.NoError(t, err)
	return card
}

func collect(t *testing.T, card *Card) ([]domain.RemoteFile, error) {
	t.Helper()
	var out []domain.RemoteFile
	for file, err := range card.List(context.Background(), domain.Source{Name: "X100S"}) {
		if err != nil {
			return out, err
		}
		out = append(out, file)
	}
	return out, nil
}

func TestParseReference(t *testing.T) {
	file, err := ParseReference("thumbnail?fname=DSCF3479.JPG&fdir=103_FUJI&ftype=0&time=1389464558")
	require.NoError(t, err)
	assert.Equal(t, "DSCF3479.JPG", file.Name)
	assert.Equal(t, "103_FUJI", file.Dir)
	assert.Equal(t, "0", file.Type)
	require.NotNil(t, file.EncodedTime)
	assert.Equal(t, int64(1389464558), *file.EncodedTime)

	file, err = ParseReference("thumbnail?fname=A.JPG&fdir=100")
	require.NoError(t, err)
	assert.Nil(t, file.EncodedTime)

	for _, bad := range []string{
		"thumbnail?fdir=103_FUJI",
		"thumbnail?fname=A.JPG",
		"thumbnail?fname=A.JPG&fdir=100&time=yesterday",
	} {
		_, err := ParseReference(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePageWithoutNextLink(t *testing.T) {
	page, err := ParsePage(strings.NewReader(page2))
	require.NoError(t, err)
	assert.Len(t, page.Files, 1)
	assert.Empty(t, page.Next)
}

func TestListFollowsPagination(t *testing.T) {
	card := newCard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, page2)
			return
		}
		fmt.Fprint(w, page1)
	}))

	got, err := collect(t, card)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "DSCF0001.JPG", got[0].Name)
	assert.Equal(t, "DSCF0003.RAF", got[2].Name)
	assert.Equal(t, "104_FUJI", got[2].Dir)
}

func TestListFailsMidPagination(t *testing.T) {
	card := newCard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, page1)
	}))

	got, err := collect(t, card)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.Listing))
	assert.Len(t, got, 2, "first page items were yielded before the failure")
}

func TestListStopsOnPaginationLoop(t *testing.T) {
	card := newCard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<img src="t?fname=A.JPG&fdir=100"><div id="post"><a href="mphoto">again</a></div>`)
	}))

	got, err := collect(t, card)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListIsSingleUse(t *testing.T) {
	card := newCard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page2)
	}))
	seq := card.List(context.Background(), domain.Source{Name: "X100S"})
	for range seq {
	}

	var secondErr error
	for _, err := range seq {
		secondErr = err
	}
	assert.True(t, appErrors.Is(secondErr, appErrors.Listing))
}

func TestRetrieve(t *testing.T) {
	card := newCard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/DCIM/103_FUJI/old.JPG":
			http.Redirect(w, r, "/DCIM/103_FUJI/DSCF0001.JPG", http.StatusFound)
		case "/DCIM/103_FUJI/DSCF0001.JPG":
			fmt.Fprint(w, "jpeg-bytes")
		default:
			http.NotFound(w, r)
		}
	}))

	var buf bytes.Buffer
	err := card.Retrieve(context.Background(), domain.Source{}, domain.RemoteFile{Dir: "103_FUJI", Name: "old.JPG"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", buf.String())

	err = card.Retrieve(context.Background(), domain.Source{}, domain.RemoteFile{Dir: "103_FUJI", Name: "missing.JPG"}, &buf)
	assert.Error(t, err)
}

func TestFileURL(t *testing.T) {
	card, err := New("http://ezshare.card/", "mphoto", time.Second, logging.Logger{})
	require.NoError(t, err)
	assert.Equal(t, "http://ezshare.card/DCIM/103_FUJI/DSCF0001.JPG",
		card.FileURL(domain.RemoteFile{Dir: "103_FUJI", Name: "DSCF0001.JPG"}))
}

type fakeScanner struct {
	ssids []string
	err   error
}

func (f fakeScanner) Networks(ctx context.Context) ([]string, error) {
	return f.ssids, f.err
}

func TestFinder(t *testing.T) {
	finder := Finder{Prefix: "ez Share", Password: "88888888", DefaultName: "ezshare"}

	finder.Scanner = fakeScanner{ssids: []string{"home", "ez Share X100S"}}
	src, err := finder.Find(context.Background())
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.Equal(t, "X100S", src.Name)
	assert.Equal(t, "ez Share X100S", src.SSID)
	assert.Equal(t, domain.ModeNetwork, src.Mode)

	finder.Scanner = fakeScanner{ssids: []string{"ez Share"}}
	src, err = finder.Find(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ezshare", src.Name)

	finder.Scanner = fakeScanner{ssids: []string{"home"}}
	src, err = finder.Find(context.Background())
	require.NoError(t, err)
	assert.Nil(t, src)
}
