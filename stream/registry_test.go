package stream

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryAdmitsUntilFull(t *testing.T) {
	r := NewRegistry(2)

	s1 := New("aaaaaaaa", "rtsp://a", nil, nil)
	s2 := New("bbbbbbbb", "rtsp://b", nil, nil)
	s3 := New("cccccccc", "rtsp://c", nil, nil)

	require.NoError(t, r.Admit(s1))
	require.NoError(t, r.Admit(s2))
	require.ErrorIs(t, r.Admit(s3), ErrRegistryFull)
	require.Equal(t, 2, r.Len())
}

func TestRegistryRemoveThenReadmit(t *testing.T) {
	r := NewRegistry(1)
	s1 := New("aaaaaaaa", "rtsp://a", nil, nil)
	require.NoError(t, r.Admit(s1))

	r.Remove("req-1", s1.Identifier)
	require.Equal(t, 0, r.Len())

	s2 := New("bbbbbbbb", "rtsp://b", nil, nil)
	require.NoError(t, r.Admit(s2))
}

func TestRegistryGetMiss(t *testing.T) {
	r := NewRegistry(1)
	require.Nil(t, r.Get("missing"))
}

func TestRegistryAll(t *testing.T) {
	r := NewRegistry(2)
	s1 := New("aaaaaaaa", "rtsp://a", nil, nil)
	s2 := New("bbbbbbbb", "rtsp://b", nil, nil)
	require.NoError(t, r.Admit(s1))
	require.NoError(t, r.Admit(s2))

	require.ElementsMatch(t, []string{"aaaaaaaa", "bbbbbbbb"}, identifiersOf(r.All()))
}

func TestRegistryAdmitNeverExceedsLimitUnderConcurrency(t *testing.T) {
	const limit = 3
	const attempts = 50
	r := NewRegistry(limit)

	var wg sync.WaitGroup
	admitted := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := New(fmt.Sprintf("stream%02d", i), "rtsp://a", nil, nil)
			admitted <- r.Admit(s) == nil
		}(i)
	}
	wg.Wait()
	close(admitted)

	successes := 0
	for ok := range admitted {
		if ok {
			successes++
		}
	}

	require.Equal(t, limit, successes)
	require.Equal(t, limit, r.Len())
}

func identifiersOf(streams []*Stream) []string {
	out := make([]string, len(streams))
	for i, s := range streams {
		out[i] = s.Identifier
	}
	return out
}
