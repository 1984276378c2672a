package artifact

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fashionagent/core"
)

// Interface compliance (compile-time assertions)
var _ core.ArtifactStore = (*InMemoryStore)(nil)

func TestInMemoryStore_PutGetIsolation(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryStore("")
	data := []byte("hello")

	loc, err := svc.Put(ctx, "OutputImages/a.jpg", data)
	require.NoError(t, err)
	assert.Equal(t, "mem://artifacts/OutputImages/a.jpg", loc)

	data[0] = 'H'
	out, err := svc.Get(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	out[0] = 'x'
	out2, err := svc.Get(ctx, "OutputImages/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out2))
}

func TestInMemoryStore_GetMissing(t *testing.T) {
	_, err := NewInMemoryStore("").Get(context.Background(), "s3://nope/x.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestInMemoryStore_EmptyLocation(t *testing.T) {
	_, err := NewInMemoryStore("").Put(context.Background(), " ", []byte("x"))
	assert.Error(t, err)
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryStore("s3://bucket")
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Put(ctx, fmt.Sprintf("a%d", i%10), []byte("data")); err != nil {
				t.Errorf("put err: %v", err)
			}
			_ = svc.List()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, svc.Len())
}

func TestLocationHelpers(t *testing.T) {
	bucket, key, err := ParseS3Location("s3://fashion/OutputImages/coat.jpg")
	require.NoError(t, err)
	assert.Equal(t, "fashion", bucket)
	assert.Equal(t, "OutputImages/coat.jpg", key)

	_, _, err = ParseS3Location("https://example.com/x")
	assert.Error(t, err)
	_, _, err = ParseS3Location("s3://bucket-only")
	assert.Error(t, err)

	assert.Equal(t, "s3://b/OutputImages/x.jpg", Join("s3://b/", "/OutputImages/x.jpg"))
	assert.Equal(t, "coat.jpg", BaseName("s3://fashion/in/coat.jpg"))
	assert.Equal(t, "coat.jpg", BaseName("coat.jpg"))
	assert.Equal(t, "OutputImages/x.jpg", OutputKey("x.jpg"))
}
