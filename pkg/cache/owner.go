package cache

import "github.com/google/uuid"

// Owner identifies whose feed a batch belongs to. It is either a real user
// or the explicit anonymous identity; the anonymous variant is not a value
// from the user-ID space, so it can never collide with a real user.
type Owner struct {
	id   uuid.UUID
	anon bool
}

// anonComponent is the key segment used for the shared anonymous cache surface.
const anonComponent = "anon"

// UserOwner returns the owner identity for an authenticated user.
func UserOwner(id uuid.UUID) Owner {
	return Owner{id: id}
}

// Anonymous returns the shared identity for unauthenticated requests.
// All anonymous requests for the same language/category hit the same batches.
func Anonymous() Owner {
	return Owner{anon: true}
}

// IsAnonymous reports whether this is the shared anonymous identity.
func (o Owner) IsAnonymous() bool {
	return o.anon
}

// UserID returns the authenticated user ID, or false for the anonymous owner.
func (o Owner) UserID() (uuid.UUID, bool) {
	if o.anon {
		return uuid.UUID{}, false
	}
	return o.id, true
}

// String renders the owner component of a cache key.
func (o Owner) String() string {
	if o.anon {
		return anonComponent
	}
	return o.id.String()
}
