/*Package triggers holds the event-driven handlers of the shop backend:
the user-creation trigger persists the user and shop profile, the
review-creation trigger logs the new document.

Handlers may be re-invoked by the platform's retry mechanism and are not
guaranteed idempotent.
*/
package triggers

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/gridshop/functions/core/docstore"
	"github.com/gridshop/functions/core/events"
	"github.com/gridshop/functions/core/logger"
)

// ProviderProfile is one identity provider linked to a user
type ProviderProfile struct {
	ProviderID string `json:"providerId"`
}

// UserRecord is the identity platform's user payload delivered with a
// user-creation event
type UserRecord struct {
	UID          string            `json:"uid"`
	Email        string            `json:"email"`
	PhotoURL     string            `json:"photoURL"`
	DisplayName  string            `json:"displayName"`
	ProviderData []ProviderProfile `json:"providerData"`
}

// Register binds the triggers to the event dispatcher
func Register(dispatcher *events.Dispatcher, store docstore.Driver) {
	dispatcher.HandleEvent("users", events.OperationCreate, func(ctx context.Context, event events.Event) error {
		var user UserRecord
		if err := json.Unmarshal(event.Payload, &user); err != nil {
			return err
		}
		return UserOnCreate(ctx, store, user)
	})
	dispatcher.HandleEvent("reviews", events.OperationCreate, ReviewOnCreate)
}

// UserOnCreate persists the new user's profile. Users that signed up
// through a social provider (no password provider) also get a shop
// document created for them.
func UserOnCreate(ctx context.Context, store docstore.Driver, user UserRecord) error {
	if user.Email == "" {
		return nil
	}

	createdAt := docstore.ServerTimestamp()
	err := store.Set(ctx, "users", user.UID, docstore.Document{
		"email":       user.Email,
		"photoURL":    user.PhotoURL,
		"displayName": user.DisplayName,
		"createdAt":   createdAt,
	})
	if err != nil {
		return err
	}

	isPassword := false
	for _, profile := range user.ProviderData {
		if profile.ProviderID == "password" {
			isPassword = true
		}
	}
	if isPassword {
		return nil
	}

	return store.Set(ctx, "shops", user.UID, docstore.Document{
		"email":       user.Email,
		"displayName": user.DisplayName,
		"bio":         "",
		"createdAt":   createdAt,
	})
}

// ReviewOnCreate logs the new review document. Deliberately a stub, no
// further processing happens yet.
func ReviewOnCreate(ctx context.Context, event events.Event) error {
	var review struct {
		ReviewID string          `json:"review_id"`
		Review   json.RawMessage `json:"review"`
	}
	if err := json.Unmarshal(event.Payload, &review); err != nil {
		return err
	}
	rlog := logger.FromContext(ctx)
	rlog.Infoln("review ID:", review.ReviewID)
	rlog.Infoln("review data:", string(review.Review))
	return nil
}
