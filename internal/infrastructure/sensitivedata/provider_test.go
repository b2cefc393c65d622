package sensitivedata

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProvider_Track(t *testing.T) {
	p := NewProvider()

	p.Track("client-secret")
	p.Track("access-token")
	p.Track("")
	p.Track("client-secret")

	assert.Equal(t, []string{"client-secret", "access-token"}, p.AllValues())
}

func TestProvider_Concurrency(t *testing.T) {
	p := NewProvider()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			p.Track(fmt.Sprintf("secret-%d", i%10))
		}(i)
		go func() {
			defer wg.Done()
			_ = p.AllValues()
		}()
	}

	wg.Wait()
	assert.Len(t, p.AllValues(), 10)
}

func TestProvider_Immutability(t *testing.T) {
	p := NewProvider()
	p.Track("secret")

	values := p.AllValues()
	values[0] = "hacked"

	assert.Equal(t, "secret", p.AllValues()[0], "returned slice should be a copy")
}
