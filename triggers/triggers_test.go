package triggers

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridshop/functions/core/docstore"
	"github.com/gridshop/functions/core/events"
)

func TestUserOnCreateSocialAuth(t *testing.T) {
	store := docstore.NewMemory()
	ctx := context.Background()

	user := UserRecord{
		UID:         "u1",
		Email:       "a@example.com",
		DisplayName: "Ada",
		ProviderData: []ProviderProfile{
			{ProviderID: "google.com"},
		},
	}
	require.NoError(t, UserOnCreate(ctx, store, user))

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", doc["email"])
	assert.NotEmpty(t, doc["createdAt"])

	// social-auth users get a shop document
	shop, err := store.Get(ctx, "shops", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", shop["displayName"])
	assert.Equal(t, "", shop["bio"])
}

func TestUserOnCreatePasswordAuth(t *testing.T) {
	store := docstore.NewMemory()
	ctx := context.Background()

	user := UserRecord{
		UID:          "u2",
		Email:        "b@example.com",
		ProviderData: []ProviderProfile{{ProviderID: "password"}},
	}
	require.NoError(t, UserOnCreate(ctx, store, user))

	_, err := store.Get(ctx, "users", "u2")
	assert.NoError(t, err)

	// password users do not get a shop
	_, err = store.Get(ctx, "shops", "u2")
	assert.Equal(t, docstore.ErrNotFound, err)
}

func TestUserOnCreateWithoutEmail(t *testing.T) {
	store := docstore.NewMemory()
	ctx := context.Background()

	require.NoError(t, UserOnCreate(ctx, store, UserRecord{UID: "u3"}))

	_, err := store.Get(ctx, "users", "u3")
	assert.Equal(t, docstore.ErrNotFound, err)
}

func TestReviewOnCreate(t *testing.T) {
	payload, _ := json.Marshal(map[string]interface{}{
		"review_id": "r1",
		"review":    map[string]interface{}{"rating": 5},
	})
	err := ReviewOnCreate(context.Background(), events.Event{
		EventID:   "e1",
		Resource:  "reviews",
		Operation: events.OperationCreate,
		Payload:   payload,
	})
	assert.NoError(t, err)
}

func TestRegisterDispatchesUserCreate(t *testing.T) {
	store := docstore.NewMemory()
	dispatcher := events.NewDispatcher(1)
	Register(dispatcher, store)

	payload, _ := json.Marshal(UserRecord{
		UID:   "u4",
		Email: "c@example.com",
	})
	dispatcher.Notify(context.Background(), "users", events.OperationCreate, payload)
	dispatcher.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := store.Get(context.Background(), "users", "u4"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("user document was not created")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
