// internal/service/personal/personal_test.go
package personal

import (
	"context"
	"fmt"
	"testing"

	"dird-service/internal/domain/contact"
	xerrors "dird-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeContactStore enforces the same per-user hash uniqueness the database
// unique(user_uuid, hash) constraint provides.
type fakeContactStore struct {
	contacts map[string]*contact.Contact
	nextID   int
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{contacts: map[string]*contact.Contact{}}
}

func (s *fakeContactStore) hashTaken(userUUID, hash, exceptUUID string) bool {
	for _, c := range s.contacts {
		if c.UserUUID == userUUID && c.Hash == hash && c.UUID != exceptUUID {
			return true
		}
	}
	return false
}

func (s *fakeContactStore) Create(_ context.Context, userUUID string, fields map[string]string, hash string) (*contact.Contact, error) {
	if s.hashTaken(userUUID, hash, "") {
		return nil, xerrors.ErrDuplicatedContact
	}
	s.nextID++
	c := &contact.Contact{
		UUID:     fmt.Sprintf("c%d", s.nextID),
		UserUUID: userUUID,
		Hash:     hash,
		Fields:   fields,
	}
	s.contacts[c.UUID] = c
	return c, nil
}

func (s *fakeContactStore) Edit(_ context.Context, userUUID, contactUUID string, fields map[string]string, hash string) (*contact.Contact, error) {
	c, ok := s.contacts[contactUUID]
	if !ok || c.UserUUID != userUUID {
		return nil, xerrors.ErrNoSuchContact
	}
	if s.hashTaken(userUUID, hash, contactUUID) {
		return nil, xerrors.ErrDuplicatedContact
	}
	c.Fields = fields
	c.Hash = hash
	return c, nil
}

func (s *fakeContactStore) Get(_ context.Context, userUUID, contactUUID string) (*contact.Contact, error) {
	c, ok := s.contacts[contactUUID]
	if !ok || c.UserUUID != userUUID {
		return nil, xerrors.ErrNoSuchContact
	}
	return c, nil
}

func (s *fakeContactStore) Delete(_ context.Context, userUUID, contactUUID string) error {
	c, ok := s.contacts[contactUUID]
	if !ok || c.UserUUID != userUUID {
		return xerrors.ErrNoSuchContact
	}
	delete(s.contacts, contactUUID)
	return nil
}

func (s *fakeContactStore) List(_ context.Context, userUUID string) ([]*contact.Contact, error) {
	var out []*contact.Contact
	for _, c := range s.contacts {
		if c.UserUUID == userUUID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeContactStore) Purge(_ context.Context, userUUID string) error {
	for uuid, c := range s.contacts {
		if c.UserUUID == userUUID {
			delete(s.contacts, uuid)
		}
	}
	return nil
}

type fakeTenantStore struct {
	country string
}

func (s *fakeTenantStore) Country(context.Context, string) (string, error) {
	return s.country, nil
}

func newTestService(store *fakeContactStore) *Service {
	return NewService(store, &fakeTenantStore{}, zap.NewNop())
}

func TestCreateDuplicateContact(t *testing.T) {
	store := newFakeContactStore()
	svc := newTestService(store)

	fields := map[string]string{"firstname": "Bob", "lastname": "Dylan", "number": "1000"}
	_, err := svc.Create(context.Background(), "t1", "u1", fields)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "t1", "u1", fields)
	assert.ErrorIs(t, err, xerrors.ErrDuplicatedContact)
	assert.Len(t, store.contacts, 1)
}

func TestCreateSameFieldsDifferentUsers(t *testing.T) {
	svc := newTestService(newFakeContactStore())

	fields := map[string]string{"firstname": "Bob"}
	_, err := svc.Create(context.Background(), "t1", "u1", fields)
	require.NoError(t, err)

	// hash uniqueness is scoped per owner
	_, err = svc.Create(context.Background(), "t1", "u2", fields)
	assert.NoError(t, err)
}

func TestEditToFieldsOfAnotherContact(t *testing.T) {
	svc := newTestService(newFakeContactStore())

	first, err := svc.Create(context.Background(), "t1", "u1", map[string]string{"firstname": "Bob"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), "t1", "u1", map[string]string{"firstname": "Alice"})
	require.NoError(t, err)

	_, err = svc.Edit(context.Background(), "t1", "u1", second["id"], map[string]string{"firstname": "Bob"})
	assert.ErrorIs(t, err, xerrors.ErrDuplicatedContact)

	// a contact may be rewritten to its own unchanged fields
	_, err = svc.Edit(context.Background(), "t1", "u1", first["id"], map[string]string{"firstname": "Bob"})
	assert.NoError(t, err)
}

func TestEditUnknownContact(t *testing.T) {
	svc := newTestService(newFakeContactStore())

	_, err := svc.Edit(context.Background(), "t1", "u1", "missing", map[string]string{"firstname": "Bob"})
	assert.ErrorIs(t, err, xerrors.ErrNoSuchContact)
}

func TestCreateStoresCanonicalHash(t *testing.T) {
	store := newFakeContactStore()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), "t1", "u1", map[string]string{
		"firstname": "  Bob ",
		"lastname":  "Dylan",
		"comment":   "",
	})
	require.NoError(t, err)

	stored := store.contacts[created["id"]]
	want := contact.HashFields(map[string]string{"firstname": "Bob", "lastname": "Dylan"})
	assert.Equal(t, want, stored.Hash)
}

func TestCreateThenEditKeepsHashCurrent(t *testing.T) {
	store := newFakeContactStore()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), "t1", "u1", map[string]string{"firstname": "Bob"})
	require.NoError(t, err)

	_, err = svc.Edit(context.Background(), "t1", "u1", created["id"], map[string]string{"firstname": "Robert"})
	require.NoError(t, err)

	stored := store.contacts[created["id"]]
	assert.Equal(t, contact.HashFields(map[string]string{"firstname": "Robert"}), stored.Hash)

	// the freed hash may be reused by a new contact
	_, err = svc.Create(context.Background(), "t1", "u1", map[string]string{"firstname": "Bob"})
	assert.NoError(t, err)
}
