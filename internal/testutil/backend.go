package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/models"
)

// Call records one data operation made against a FakeBackend.
type Call struct {
	Op          string
	Collection  backend.Collection
	Query       backend.Query
	AccessToken string
}

type fakeUser struct {
	identity backend.Identity
	password string
}

// FakeBackend is an in-memory backend.Client that records every data call.
// Set Fail["op:collection"] (for example "insert:match_participants") or
// Fail["op"] for auth operations to make a call fail.
type FakeBackend struct {
	backend.Broadcaster

	mu             sync.Mutex
	Matches        []models.Match
	Participations []models.Participation
	Profiles       []models.Profile
	Calls          []Call
	Fail           map[string]error

	users    map[string]fakeUser
	access   map[string]backend.Identity
	refresh  map[string]backend.Identity
	sequence int
}

var _ backend.Client = (*FakeBackend)(nil)

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Fail:    make(map[string]error),
		users:   make(map[string]fakeUser),
		access:  make(map[string]backend.Identity),
		refresh: make(map[string]backend.Identity),
	}
}

// AddUser registers a user that can sign in with password.
func (f *FakeBackend) AddUser(id, email, password string) backend.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity := backend.Identity{ID: id, Email: email}
	f.users[email] = fakeUser{identity: identity, password: password}
	return identity
}

// IssueSession returns a valid session for identity without publishing an
// event.
func (f *FakeBackend) IssueSession(identity backend.Identity) *backend.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issueLocked(identity)
}

// ExpireAccessToken invalidates token so GetSession reports ErrNoSession.
func (f *FakeBackend) ExpireAccessToken(token string) {
	f.mu.Lock()
	delete(f.access, token)
	f.mu.Unlock()
}

// CallCount counts recorded data calls of op against collection.
func (f *FakeBackend) CallCount(op string, collection backend.Collection) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, call := range f.Calls {
		if call.Op == op && call.Collection == collection {
			count++
		}
	}
	return count
}

// ResetCalls forgets recorded calls.
func (f *FakeBackend) ResetCalls() {
	f.mu.Lock()
	f.Calls = nil
	f.mu.Unlock()
}

func (f *FakeBackend) Close() error {
	return nil
}

func (f *FakeBackend) GetSession(_ context.Context, accessToken string) (*backend.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["get_session"]; err != nil {
		return nil, err
	}
	identity, ok := f.access[accessToken]
	if !ok {
		return nil, backend.ErrNoSession
	}
	return &identity, nil
}

func (f *FakeBackend) SignIn(_ context.Context, email, password string) (*backend.Session, error) {
	f.mu.Lock()
	if err := f.Fail["sign_in"]; err != nil {
		f.mu.Unlock()
		return nil, err
	}
	user, ok := f.users[email]
	if !ok || user.password != password {
		f.mu.Unlock()
		return nil, backend.ErrInvalidCredentials
	}
	session := f.issueLocked(user.identity)
	f.mu.Unlock()

	f.Publish(backend.AuthEvent{Type: backend.SignedIn, Identity: session.Identity, Session: session})
	return session, nil
}

func (f *FakeBackend) SignUp(_ context.Context, email, password string) (*backend.Session, error) {
	f.mu.Lock()
	if err := f.Fail["sign_up"]; err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if _, ok := f.users[email]; ok {
		f.mu.Unlock()
		return nil, backend.ErrEmailTaken
	}
	f.sequence++
	identity := backend.Identity{ID: fmt.Sprintf("user-%d", f.sequence), Email: email}
	f.users[email] = fakeUser{identity: identity, password: password}
	session := f.issueLocked(identity)
	f.mu.Unlock()

	f.Publish(backend.AuthEvent{Type: backend.SignedIn, Identity: session.Identity, Session: session})
	return session, nil
}

func (f *FakeBackend) Refresh(_ context.Context, refreshToken string) (*backend.Session, error) {
	f.mu.Lock()
	if err := f.Fail["refresh"]; err != nil {
		f.mu.Unlock()
		return nil, err
	}
	identity, ok := f.refresh[refreshToken]
	if !ok {
		f.mu.Unlock()
		return nil, backend.ErrNoSession
	}
	delete(f.refresh, refreshToken)
	session := f.issueLocked(identity)
	f.mu.Unlock()

	f.Publish(backend.AuthEvent{
		Type:                 backend.TokenRefreshed,
		Identity:             identity,
		Session:              session,
		PreviousRefreshToken: refreshToken,
	})
	return session, nil
}

func (f *FakeBackend) SignOut(_ context.Context, session *backend.Session) error {
	if session == nil {
		return nil
	}
	f.mu.Lock()
	for token, identity := range f.refresh {
		if identity.ID == session.Identity.ID {
			delete(f.refresh, token)
		}
	}
	err := f.Fail["sign_out"]
	f.mu.Unlock()

	f.Publish(backend.AuthEvent{Type: backend.SignedOut, Identity: session.Identity})
	return err
}

func (f *FakeBackend) issueLocked(identity backend.Identity) *backend.Session {
	f.sequence++
	session := &backend.Session{
		AccessToken:  fmt.Sprintf("access-%d", f.sequence),
		RefreshToken: fmt.Sprintf("refresh-%d", f.sequence),
		ExpiresAt:    time.Now().Add(time.Hour),
		Identity:     identity,
	}
	f.access[session.AccessToken] = identity
	f.refresh[session.RefreshToken] = identity
	return session
}

func (f *FakeBackend) Select(ctx context.Context, q backend.Query, dst any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "select", q.Collection, q); err != nil {
		return err
	}

	rows, err := f.filteredLocked(q)
	if err != nil {
		return err
	}
	return reencode(rows, dst)
}

func (f *FakeBackend) SelectSingle(ctx context.Context, q backend.Query, dst any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "select_single", q.Collection, q); err != nil {
		return err
	}

	rows, err := f.filteredLocked(q)
	if err != nil {
		return err
	}
	switch len(rows) {
	case 0:
		return &backend.Error{Op: "select_single", Collection: q.Collection, Status: 406, Err: backend.ErrNotFound}
	case 1:
		return reencode(rows[0], dst)
	default:
		return &backend.Error{Op: "select_single", Collection: q.Collection, Status: 406, Err: backend.ErrMultipleRows}
	}
}

func (f *FakeBackend) Insert(ctx context.Context, collection backend.Collection, record any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "insert", collection, backend.From(collection)); err != nil {
		return err
	}

	f.sequence++
	now := time.Now().UTC()
	switch rec := record.(type) {
	case *models.Match:
		rec.AssignID(fmt.Sprintf("match-%d", f.sequence))
		rec.CreatedAt = now
		f.Matches = append(f.Matches, *rec)
	case *models.Participation:
		rec.AssignID(fmt.Sprintf("participation-%d", f.sequence))
		rec.CreatedAt = now
		f.Participations = append(f.Participations, *rec)
	case *models.Profile:
		f.Profiles = append(f.Profiles, *rec)
	default:
		return fmt.Errorf("fake backend: unsupported record %T", record)
	}
	return nil
}

func (f *FakeBackend) Upsert(ctx context.Context, collection backend.Collection, record any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "upsert", collection, backend.From(collection)); err != nil {
		return err
	}

	profile, ok := record.(*models.Profile)
	if !ok {
		return fmt.Errorf("fake backend: unsupported upsert %T", record)
	}
	for i := range f.Profiles {
		if f.Profiles[i].ID == profile.ID {
			f.Profiles[i] = *profile
			return nil
		}
	}
	f.Profiles = append(f.Profiles, *profile)
	return nil
}

func (f *FakeBackend) record(ctx context.Context, op string, collection backend.Collection, q backend.Query) error {
	f.Calls = append(f.Calls, Call{
		Op:          op,
		Collection:  collection,
		Query:       q,
		AccessToken: backend.AccessTokenFromContext(ctx),
	})
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.Fail[op+":"+string(collection)]; err != nil {
		return err
	}
	return nil
}

func (f *FakeBackend) filteredLocked(q backend.Query) ([]map[string]any, error) {
	var table any
	switch q.Collection {
	case backend.Matches:
		table = f.Matches
	case backend.Participants:
		table = f.Participations
	case backend.Profiles:
		table = f.Profiles
	default:
		return nil, fmt.Errorf("fake backend: unknown collection %s", q.Collection)
	}

	var rows []map[string]any
	if err := reencode(table, &rows); err != nil {
		return nil, err
	}

	kept := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if matchesFilters(row, q.Filters) {
			kept = append(kept, row)
		}
	}

	if q.Order != nil {
		column := string(q.Order.Column)
		descending := q.Order.Direction == backend.Descending
		sort.SliceStable(kept, func(i, j int) bool {
			a, b := fmt.Sprint(kept[i][column]), fmt.Sprint(kept[j][column])
			if descending {
				return a > b
			}
			return a < b
		})
	}
	return kept, nil
}

func matchesFilters(row map[string]any, filters []backend.Filter) bool {
	for _, filter := range filters {
		value := fmt.Sprint(row[string(filter.Column)])
		found := false
		for _, candidate := range filter.Values {
			if candidate == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func reencode(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
