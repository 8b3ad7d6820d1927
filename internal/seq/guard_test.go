package seq

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptInOrder(t *testing.T) {
	var g Guard
	a, b := g.Next(), g.Next()

	assert.True(t, g.Accept(a))
	assert.True(t, g.Accept(b))
	assert.Equal(t, b, g.Latest())
}

func TestStaleResponseRejected(t *testing.T) {
	var g Guard
	older, newer := g.Next(), g.Next()

	assert.True(t, g.Accept(newer))
	assert.False(t, g.Accept(older), "older response must not overwrite newer")
	assert.Equal(t, newer, g.Latest())
}

func TestTicketAcceptedOnce(t *testing.T) {
	var g Guard
	a := g.Next()
	assert.True(t, g.Accept(a))
	assert.False(t, g.Accept(a))
}

func TestConcurrentNextIsUnique(t *testing.T) {
	var g Guard
	var wg sync.WaitGroup
	seen := make(chan uint64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- g.Next()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[uint64]bool{}
	for v := range seen {
		unique[v] = true
	}
	assert.Len(t, unique, 100)
}
