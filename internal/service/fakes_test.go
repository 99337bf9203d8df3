package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/limiter"
	"github.com/and161185/stockroom/internal/model"
	"github.com/and161185/stockroom/internal/repository"
)

func requireCode(t *testing.T, err error, code errs.Code) {
	t.Helper()
	var e *errs.Error
	if !errors.As(err, &e) {
		t.Fatalf("want *errs.Error with code %s, got %v", code, err)
	}
	if e.Code != code {
		t.Fatalf("want code %s, got %s (%v)", code, e.Code, err)
	}
	if e.Message == "" {
		t.Fatalf("empty message for %s", code)
	}
}

/************ users ************/

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*model.AuthUser
	nextID  int64

	existsErr error
	createErr error
	findErr   error
}

var (
	_ repository.AuthUserRepository = (*fakeUsers)(nil)
	_ repository.UserRepository     = (*fakeUsersLookup)(nil)
)

func newFakeUsers() *fakeUsers { return &fakeUsers{byEmail: map[string]*model.AuthUser{}} }

func (f *fakeUsers) Create(_ context.Context, u model.NewAuthUser) (*model.AuthUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, errs.ErrEmailAlreadyExists
	}
	f.nextID++
	au := &model.AuthUser{ID: f.nextID, Name: u.Name, Email: u.Email, PasswordHash: u.PasswordHash}
	f.byEmail[u.Email] = au
	c := *au
	return &c, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.AuthUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.byEmail[email]
	return ok, nil
}

// fakeUsersLookup is the public lookup view of fakeUsers.
type fakeUsersLookup struct{ *fakeUsers }

func (f fakeUsersLookup) FindByID(_ context.Context, id int64) (*model.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			return &model.UserInfo{ID: u.ID, Name: u.Name, Email: u.Email}, nil
		}
	}
	return nil, nil
}

func (f fakeUsersLookup) FindByEmail(ctx context.Context, email string) (*model.UserInfo, error) {
	u, err := f.fakeUsers.FindByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, err
	}
	return &model.UserInfo{ID: u.ID, Name: u.Name, Email: u.Email}, nil
}

func (f fakeUsersLookup) Exists(ctx context.Context, id int64) (bool, error) {
	u, err := f.FindByID(ctx, id)
	return u != nil, err
}

/************ limiter ************/

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
	lastEmail    string
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(_ context.Context, email string, _ []byte) (bool, time.Duration, error) {
	l.allowCalls++
	l.lastEmail = email
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

/************ spaces ************/

type memSpaces struct {
	m        map[int64]*model.Space
	nextID   int64
	childErr error
	getErr   error
}

var _ repository.SpaceRepository = (*memSpaces)(nil)

func newMemSpaces() *memSpaces { return &memSpaces{m: map[int64]*model.Space{}} }

// add inserts a space with a fixed id.
func (s *memSpaces) add(id int64, parent *int64) {
	s.m[id] = &model.Space{ID: id, Name: "space", ParentID: parent}
	if id > s.nextID {
		s.nextID = id
	}
}

func (s *memSpaces) Create(_ context.Context, name string, parentID *int64, spaceType *string) (*model.Space, error) {
	s.nextID++
	sp := &model.Space{ID: s.nextID, Name: name, ParentID: parentID, SpaceType: spaceType}
	s.m[sp.ID] = sp
	c := *sp
	return &c, nil
}

func (s *memSpaces) GetByID(_ context.Context, id int64) (*model.Space, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	sp, ok := s.m[id]
	if !ok || sp.Deleted() {
		return nil, errs.ErrNotFound
	}
	c := *sp
	return &c, nil
}

func (s *memSpaces) SoftDelete(_ context.Context, id int64) error {
	sp, ok := s.m[id]
	if !ok || sp.Deleted() {
		return errs.ErrNotFound
	}
	now := time.Now()
	sp.DeletedAt = &now
	return nil
}

// FindChildrenIDs walks parent links breadth-first with a visited set.
func (s *memSpaces) FindChildrenIDs(_ context.Context, root int64) ([]int64, error) {
	if s.childErr != nil {
		return nil, s.childErr
	}
	visited := map[int64]bool{root: true}
	frontier := []int64{root}
	var out []int64
	for len(frontier) > 0 {
		var next []int64
		for _, sp := range s.m {
			if sp.ParentID == nil || sp.Deleted() || visited[sp.ID] {
				continue
			}
			for _, p := range frontier {
				if *sp.ParentID == p {
					visited[sp.ID] = true
					next = append(next, sp.ID)
					break
				}
			}
		}
		out = append(out, next...)
		frontier = next
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

/************ items ************/

type memItems struct {
	m      map[int64]*model.Item
	spaces *memSpaces
	nextID int64

	createErr error
}

var _ repository.ItemRepository = (*memItems)(nil)

func newMemItems(spaces *memSpaces) *memItems {
	return &memItems{m: map[int64]*model.Item{}, spaces: spaces}
}

func (r *memItems) put(it model.Item) {
	r.m[it.ID] = &it
	if it.ID > r.nextID {
		r.nextID = it.ID
	}
}

func apply(it *model.Item, in model.ItemInput) {
	it.Name, it.Code, it.SKU, it.Cost = in.Name, in.Code, in.SKU, in.Cost
	it.Status, it.Notes, it.SpaceID = in.Status, in.Notes, in.SpaceID
}

func (r *memItems) Create(_ context.Context, in model.ItemInput) (*model.Item, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	it := &model.Item{ID: r.nextID}
	apply(it, in)
	r.m[it.ID] = it
	c := *it
	return &c, nil
}

func (r *memItems) GetByID(_ context.Context, id int64) (*model.Item, error) {
	it, ok := r.m[id]
	if !ok || it.Deleted() {
		return nil, errs.ErrNotFound
	}
	c := *it
	return &c, nil
}

func (r *memItems) Update(_ context.Context, id int64, in model.ItemInput) (*model.Item, error) {
	it, ok := r.m[id]
	if !ok || it.Deleted() {
		return nil, errs.ErrNotFound
	}
	apply(it, in)
	c := *it
	return &c, nil
}

func (r *memItems) SoftDelete(_ context.Context, id int64) error {
	it, ok := r.m[id]
	if !ok || it.Deleted() {
		return errs.ErrNotFound
	}
	now := time.Now()
	it.DeletedAt = &now
	return nil
}

func (r *memItems) GetForPropagation(_ context.Context, id int64) (*model.ItemForPropagation, error) {
	it, ok := r.m[id]
	if !ok || it.Deleted() {
		return nil, errs.ErrNotFound
	}
	p := &model.ItemForPropagation{
		ID: it.ID, Name: it.Name, Code: it.Code, SKU: it.SKU, Cost: it.Cost,
		Status: it.Status, Notes: it.Notes, SpaceID: it.SpaceID,
	}
	if it.SpaceID != nil && r.spaces != nil {
		if sp, ok := r.spaces.m[*it.SpaceID]; ok {
			p.SpaceType = sp.SpaceType
		}
	}
	return p, nil
}

/************ inventories ************/

type memInventories struct {
	mu     sync.Mutex
	rows   []model.Inventory
	nextID int64

	existingErr error
	batchErr    error
	// staleExisting makes ExistingSpaceIDs report nothing, simulating a
	// concurrent writer that inserts between the check and the batch.
	staleExisting bool
	// extraExisting is appended to every ExistingSpaceIDs answer.
	extraExisting []int64

	existingCalls int
	batchCalls    int
}

var _ repository.InventoryRepository = (*memInventories)(nil)

func (r *memInventories) ExistingSpaceIDs(_ context.Context, itemID int64, spaceIDs []int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.existingCalls++
	if r.existingErr != nil {
		return nil, r.existingErr
	}
	if r.staleExisting {
		return r.extraExisting, nil
	}
	want := map[int64]bool{}
	for _, id := range spaceIDs {
		want[id] = true
	}
	var out []int64
	for _, row := range r.rows {
		if row.ItemID == itemID && want[row.SpaceID] && !row.Deleted() {
			out = append(out, row.SpaceID)
		}
	}
	return append(out, r.extraExisting...), nil
}

// CreateBatch skips pairs that already have a live record, like the
// partial unique index does.
func (r *memInventories) CreateBatch(_ context.Context, records []model.NewInventory) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batchCalls++
	if r.batchErr != nil {
		return 0, r.batchErr
	}
	var n int64
outer:
	for _, rec := range records {
		for _, row := range r.rows {
			if row.ItemID == rec.ItemID && row.SpaceID == rec.SpaceID && !row.Deleted() {
				continue outer
			}
		}
		r.nextID++
		r.rows = append(r.rows, model.Inventory{
			ID: r.nextID, ItemID: rec.ItemID, SpaceID: rec.SpaceID,
			Name: rec.Name, Code: rec.Code, SKU: rec.SKU, Status: rec.Status, Notes: rec.Notes,
			Balance: rec.Balance, CostPerUnit: rec.CostPerUnit,
			SourceType: rec.SourceType, TargetType: rec.TargetType,
		})
		n++
	}
	return n, nil
}

func (r *memInventories) ListByItem(_ context.Context, itemID int64) ([]model.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Inventory
	for _, row := range r.rows {
		if row.ItemID == itemID && !row.Deleted() {
			out = append(out, row)
		}
	}
	return out, nil
}

/************ recorder ************/

type countingRecorder struct {
	mu         sync.Mutex
	events     map[string]int
	propagated int
}

func (r *countingRecorder) AuthEvent(op, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = map[string]int{}
	}
	r.events[op+"/"+outcome]++
}

func (r *countingRecorder) Propagated(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.propagated += n
}

func ptr[T any](v T) *T { return &v }

var (
	_ AuthService        = (*AuthServiceImpl)(nil)
	_ SpaceService       = (*SpaceServiceImpl)(nil)
	_ ItemService        = (*ItemServiceImpl)(nil)
	_ InventoryService   = (*InventoryServiceImpl)(nil)
	_ PropagationService = (*PropagationServiceImpl)(nil)
	_ ChildResolver      = (*SpaceResolver)(nil)
)
