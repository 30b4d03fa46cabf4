package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Payphone-Digital/midas/internal/model"
	"github.com/Payphone-Digital/midas/internal/repository"
	"github.com/Payphone-Digital/midas/pkg/mailer"
	"github.com/Payphone-Digital/midas/pkg/payment"
	"github.com/Payphone-Digital/midas/pkg/store"
	"github.com/Payphone-Digital/midas/pkg/unsplash"
	"github.com/stretchr/testify/require"
)

type fakePayments struct {
	mu      sync.Mutex
	intents map[string]payment.Intent
	calls   []string
	updates []payment.UpdateParams
	next    int

	createErr  error
	confirmErr error
	// confirmTo is the status an intent reaches when confirmed
	confirmTo string
}

func newFakePayments() *fakePayments {
	return &fakePayments{intents: make(map[string]payment.Intent), confirmTo: "succeeded"}
}

func (f *fakePayments) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakePayments) countCalls(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakePayments) CreateIntent(ctx context.Context, amount int64, metadata map[string]string) (payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")
	if f.createErr != nil {
		return payment.Intent{}, f.createErr
	}
	f.next++
	id := fmt.Sprintf("pi_%d", f.next)
	intent := payment.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
		Amount:       amount,
		Currency:     "usd",
	}
	f.intents[id] = intent
	return intent, nil
}

func (f *fakePayments) GetIntent(ctx context.Context, id string) (payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get")
	intent, ok := f.intents[id]
	if !ok {
		return payment.Intent{}, errors.New("no such payment intent")
	}
	return intent, nil
}

func (f *fakePayments) UpdateIntent(ctx context.Context, id string, params payment.UpdateParams) (payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update")
	f.updates = append(f.updates, params)
	intent := f.intents[id]
	if params.Amount != nil {
		intent.Amount = *params.Amount
	}
	f.intents[id] = intent
	return intent, nil
}

func (f *fakePayments) ConfirmIntent(ctx context.Context, id, paymentMethod string) (payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("confirm")
	if f.confirmErr != nil {
		return payment.Intent{}, f.confirmErr
	}
	intent := f.intents[id]
	intent.Status = f.confirmTo
	f.intents[id] = intent
	return intent, nil
}

func (f *fakePayments) CancelIntent(ctx context.Context, id string) (payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("cancel")
	intent := f.intents[id]
	intent.Status = "canceled"
	f.intents[id] = intent
	return intent, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeSearcher struct {
	mu      sync.Mutex
	queries map[string]int
	err     error
}

func (f *fakeSearcher) SearchPhotos(ctx context.Context, query string, count int) ([]unsplash.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queries == nil {
		f.queries = make(map[string]int)
	}
	f.queries[query]++
	if f.err != nil {
		return nil, f.err
	}
	photos := make([]unsplash.Photo, count)
	for i := range photos {
		photos[i] = unsplash.Photo{ID: fmt.Sprintf("%s-%d", query, i), URLs: map[string]string{}}
	}
	return photos, nil
}

// failingStore fails Update calls on one collection once armed, and Delete
// calls for deleteKey.
type failingStore struct {
	store.Store
	collection string
	armed      bool
	deleteKey  string
}

func (s *failingStore) Delete(ctx context.Context, collection, key string) error {
	if s.deleteKey != "" && key == s.deleteKey {
		return errors.New("permission denied")
	}
	return s.Store.Delete(ctx, collection, key)
}

func (s *failingStore) Update(ctx context.Context, collection, key string, v any) error {
	if s.armed && collection == s.collection {
		return errors.New("disk full")
	}
	return s.Store.Update(ctx, collection, key, v)
}

type fixture struct {
	store  *failingStore
	users  *repository.UserRepository
	tokens *repository.TokenRepository
	menus  *repository.MenuRepository
	hasher *PasswordHasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	s := &failingStore{Store: fs, collection: "users"}
	f := &fixture{
		store:  s,
		users:  repository.NewUserRepository(s),
		tokens: repository.NewTokenRepository(s),
		menus:  repository.NewMenuRepository(s),
		hasher: NewPasswordHasher("test-secret"),
	}
	f.hasher.cost = 4
	require.NoError(t, fs.Create(context.Background(), "menu", "menu", []repository.MenuRecord{
		{Name: "Margherita Pizza", Price: 11.99, Type: "Pizza", PhotoQuery: "Pizza"},
		{Name: "Pepperoni Pizza", Price: 13.49, Type: "Pizza", PhotoQuery: "pizza"},
		{Name: "Garlic Knots", Price: 4.99, Type: "Side", PhotoID: "knots1"},
		{Name: "Lemonade", Price: 2.5, Type: "Drink", PhotoQuery: "lemonade"},
	}))
	return f
}

func (f *fixture) addUser(t *testing.T, email string, cart model.Cart) *model.User {
	t.Helper()
	hashed, err := f.hasher.Hash("Abc12345!")
	require.NoError(t, err)
	user := &model.User{
		Name:          "Ada",
		Email:         email,
		Password:      hashed,
		StreetAddress: "12 Main Street Springfield, IL 62701",
		Cart:          cart,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
