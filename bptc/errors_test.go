package bptc_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bptc-go/bptc-encoder/bptc"
)

func TestErrorString_Names(t *testing.T) {
	cases := []struct {
		code bptc.ErrorCode
		want string
	}{
		{bptc.Success, "BPTC_SUCCESS"},
		{bptc.ErrBadParam, "BPTC_ERR_BAD_PARAM"},
		{bptc.ErrBadBufferSize, "BPTC_ERR_BAD_BUFFER_SIZE"},
		{bptc.ErrBadQuality, "BPTC_ERR_BAD_QUALITY"},
		{bptc.ErrBadFormat, "BPTC_ERR_BAD_FORMAT"},
		{bptc.ErrBadFlags, "BPTC_ERR_BAD_FLAGS"},
		{bptc.ErrBadContext, "BPTC_ERR_BAD_CONTEXT"},
		{bptc.ErrCancelled, "BPTC_ERR_CANCELLED"},
		{bptc.ErrNoValidCandidate, "BPTC_ERR_NO_VALID_CANDIDATE"},
		{bptc.ErrBadBlock, "BPTC_ERR_BAD_BLOCK"},
	}

	for _, c := range cases {
		if got := bptc.ErrorString(c.code); got != c.want {
			t.Fatalf("ErrorString(%d): got %q want %q", uint32(c.code), got, c.want)
		}
	}

	if got := bptc.ErrorString(bptc.ErrorCode(0xDEADBEEF)); got != "" {
		t.Fatalf("ErrorString(unknown): got %q want %q", got, "")
	}
}

func TestErrorCodeOf(t *testing.T) {
	if got := bptc.ErrorCodeOf(nil); got != bptc.Success {
		t.Fatalf("ErrorCodeOf(nil): got %v want %v", got, bptc.Success)
	}

	_, err := bptc.ConfigInit(bptc.FormatBC7, bptc.Quality(99), 0)
	if got := bptc.ErrorCodeOf(err); got != bptc.ErrBadQuality {
		t.Fatalf("ErrorCodeOf(bad quality): got %v want %v", got, bptc.ErrBadQuality)
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if got := bptc.ErrorCodeOf(wrapped); got != bptc.ErrBadQuality {
		t.Fatalf("ErrorCodeOf(wrapped): got %v want %v", got, bptc.ErrBadQuality)
	}

	if got := bptc.ErrorCodeOf(errors.New("plain")); got != bptc.ErrBadParam {
		t.Fatalf("ErrorCodeOf(plain): got %v want %v", got, bptc.ErrBadParam)
	}
}

func TestError_UnwrapsCause(t *testing.T) {
	err := &bptc.Error{Code: bptc.ErrCancelled, Err: context.Canceled}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("errors.Is(context.Canceled): false")
	}
	if !bptc.IsCancelled(err) {
		t.Fatalf("IsCancelled: false")
	}
	if got, want := err.Error(), "bptc: BPTC_ERR_CANCELLED: context canceled"; got != want {
		t.Fatalf("Error(): got %q want %q", got, want)
	}
}
