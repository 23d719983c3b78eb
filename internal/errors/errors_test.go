package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(Fetch, "fetch", "IMG_1.JPG", nil))
}

func TestKindOfAndIs(t *testing.T) {
	inner := Wrap(Fetch, "fetch", "IMG_1.JPG", os.ErrNotExist)
	outer := fmt.Errorf("cycle: %w", Wrap(Listing, "list", "http://ezshare.card/mphoto", inner))

	assert.Equal(t, Listing, KindOf(outer))
	assert.True(t, Is(outer, Listing))
	assert.True(t, Is(outer, Fetch))
	assert.False(t, Is(outer, Upload))
	assert.True(t, stderrors.Is(outer, os.ErrNotExist))
	assert.Equal(t, Internal, KindOf(stderrors.New("plain")))
}

func TestUserMessage(t *testing.T) {
	err := Wrap(Commit, "append", "/history/X100S.txt", stderrors.New("disk full"))
	assert.Equal(t, "Could not update history /history/X100S.txt: disk full", UserMessage(err))
	assert.Equal(t, "plain", UserMessage(stderrors.New("plain")))
	assert.Equal(t, "Path not found: /media", UserMessage(New(NotFound, "stat", "/media", "missing")))
}
