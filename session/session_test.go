package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/internal/testutil"
)

func stores(t *testing.T) map[string]core.SessionStore {
	t.Helper()
	sqlite, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]core.SessionStore{
		"memory": NewInMemoryStore(),
		"sqlite": sqlite,
	}
}

func sampleState(id string) *core.ConversationState {
	b := testutil.NewMessageBuilder
	return testutil.NewStateBuilder(id).
		Image("s3://bucket/uploads/a.jpg").
		Database("catalog").
		Messages(
			b().User("an outfit for Rome").Build(),
			b().Call("weather", `{"location_name":"Rome"}`).Build(),
			b().Result("call-1", "weather", "Temperature is 70 in Fahrenheit.", core.StatusSuccess).Build(),
			b().Assistant("Here is a look").Build(),
		).Build()
}

func TestStores_LoadUnknownReturnsEmpty(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			st, err := s.Load(context.Background(), "nope")
			require.NoError(t, err)
			assert.Equal(t, "nope", st.SessionID)
			assert.Zero(t, st.Conversation.Len())
			assert.Empty(t, st.InputImageRef)
		})
	}
}

func TestStores_RoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, sampleState("s1")))

			st, err := s.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, "s3://bucket/uploads/a.jpg", st.InputImageRef)
			assert.Equal(t, "catalog", st.RetrievalDatabase)

			msgs := st.Conversation.Messages()
			require.Len(t, msgs, 4)
			assert.Equal(t, core.RoleUser, msgs[0].Role)
			require.Len(t, msgs[1].ToolCalls, 1)
			assert.JSONEq(t, `{"location_name":"Rome"}`, string(msgs[1].ToolCalls[0].Arguments))
			require.NotNil(t, msgs[2].Result)
			assert.Equal(t, "call-1", msgs[2].Result.CallID)
			assert.Equal(t, core.StatusSuccess, msgs[2].Result.Status)
		})
	}
}

func TestStores_SaveOverwrites(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st := sampleState("s2")
			require.NoError(t, s.Save(ctx, st))

			st.Conversation = st.Conversation.Append(core.NewUserMessage("more"))
			st.InputImageRef = ""
			require.NoError(t, s.Save(ctx, st))

			got, err := s.Load(ctx, "s2")
			require.NoError(t, err)
			assert.Equal(t, 5, got.Conversation.Len())
			assert.Empty(t, got.InputImageRef)
		})
	}
}

func TestStores_RejectEmptyID(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Save(context.Background(), core.NewConversationState(""))
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestInMemoryStore_Isolation(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	st := sampleState("s3")
	require.NoError(t, s.Save(ctx, st))

	st.InputImageRef = "changed"
	loaded, err := s.Load(ctx, "s3")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/uploads/a.jpg", loaded.InputImageRef)

	loaded.RetrievalDatabase = "other"
	again, err := s.Load(ctx, "s3")
	require.NoError(t, err)
	assert.Equal(t, "catalog", again.RetrievalDatabase)

	require.NoError(t, s.Delete(ctx, "s3"))
	assert.Zero(t, s.Len())
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "state.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, sampleState("durable")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	st, err := s.Load(ctx, "durable")
	require.NoError(t, err)
	assert.Equal(t, 4, st.Conversation.Len())

	require.NoError(t, s.Delete(ctx, "durable"))
	st, err = s.Load(ctx, "durable")
	require.NoError(t, err)
	assert.Zero(t, st.Conversation.Len())
}
