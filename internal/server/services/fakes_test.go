package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/dbx"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/preferences"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/profiles"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/tasks"
)

// --- helpers ---

var fixedNow = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type recordingViews struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingViews) Revalidate(_ context.Context, userID string, paths ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{userID}, paths...))
	return len(paths)
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendWelcome(_ context.Context, email, name string) error {
	f.sent = append(f.sent, email+"|"+name)
	return f.err
}

// --- in-memory store behind the fake repository manager ---

type memStore struct {
	mu sync.Mutex

	profiles map[string]*models.Profile
	tasks    []*models.Task
	prefs    map[string][]byte

	getProfileErr    error
	createProfileErr error
	lostRace         bool
	setCompletedErr  error
	// createTaskErr, when set, is consulted for every insert; n is 1-based.
	createTaskErr func(n int, t *models.Task) error
	createCalls   int
	listErr       error
	deleteErr     error
	prefsGetErr   error
	prefsSaveErr  error

	// handles records the DBTX each repository was bound to.
	handles []dbx.DBTX
}

func newMemStore() *memStore {
	return &memStore{profiles: map[string]*models.Profile{}, prefs: map[string][]byte{}}
}

func (s *memStore) addProfile(id string, username string, completed bool) {
	p := &models.Profile{ID: id, TutorialCompleted: completed, CreatedAt: fixedNow}
	if username != "" {
		p.Username = &username
	}
	s.profiles[id] = p
}

func (s *memStore) tasksFor(userID string) []*models.Task {
	var out []*models.Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func (s *memStore) isTutorial(t *models.Task, titles []string) bool {
	if t.Kind == models.KindTutorial {
		return true
	}
	for _, title := range titles {
		if t.Title == title {
			return true
		}
	}
	return false
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Profiles(db dbx.DBTX) profiles.Repository {
	m.s.handles = append(m.s.handles, db)
	return &fakeProfiles{m.s}
}

func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasks.Repository {
	m.s.handles = append(m.s.handles, db)
	return &fakeTasks{m.s}
}

func (m *fakeRepoManager) Preferences(db dbx.DBTX) preferences.Repository {
	m.s.handles = append(m.s.handles, db)
	return &fakePrefs{m.s}
}

type fakeProfiles struct{ s *memStore }

func (f *fakeProfiles) Get(_ context.Context, userID string) (*models.Profile, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.getProfileErr != nil {
		return nil, f.s.getProfileErr
	}
	p, ok := f.s.profiles[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) CreateIfAbsent(_ context.Context, userID string, email *string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.createProfileErr != nil {
		return false, f.s.createProfileErr
	}
	if f.s.lostRace {
		f.s.profiles[userID] = &models.Profile{ID: userID, CreatedAt: fixedNow}
		return false, nil
	}
	if _, ok := f.s.profiles[userID]; ok {
		return false, nil
	}
	f.s.profiles[userID] = &models.Profile{ID: userID, Email: email, CreatedAt: fixedNow}
	return true, nil
}

func (f *fakeProfiles) SetTutorialCompleted(_ context.Context, userID string, completed bool) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.setCompletedErr != nil {
		return f.s.setCompletedErr
	}
	p, ok := f.s.profiles[userID]
	if !ok {
		return common.ErrorNotFound
	}
	p.TutorialCompleted = completed
	return nil
}

func (f *fakeProfiles) SetAvatarKey(_ context.Context, userID string, key string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.profiles[userID]
	if !ok {
		return common.ErrorNotFound
	}
	p.AvatarKey = &key
	return nil
}

type fakeTasks struct{ s *memStore }

func (f *fakeTasks) Create(_ context.Context, t *models.Task) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.createCalls++
	if f.s.createTaskErr != nil {
		if err := f.s.createTaskErr(f.s.createCalls, t); err != nil {
			return err
		}
	}
	cp := *t
	f.s.tasks = append(f.s.tasks, &cp)
	return nil
}

func (f *fakeTasks) ListByUser(_ context.Context, userID string) ([]*models.Task, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.listErr != nil {
		return nil, f.s.listErr
	}
	return f.s.tasksFor(userID), nil
}

func (f *fakeTasks) ListTutorial(_ context.Context, userID string, titles []string) ([]*models.Task, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.listErr != nil {
		return nil, f.s.listErr
	}
	var out []*models.Task
	for _, t := range f.s.tasksFor(userID) {
		if f.s.isTutorial(t, titles) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasks) DeleteTutorial(_ context.Context, userID string, titles []string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.deleteErr != nil {
		return 0, f.s.deleteErr
	}
	var kept []*models.Task
	var n int64
	for _, t := range f.s.tasks {
		if t.UserID == userID && f.s.isTutorial(t, titles) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	f.s.tasks = kept
	return n, nil
}

type fakePrefs struct{ s *memStore }

func (f *fakePrefs) Get(_ context.Context, userID string) ([]byte, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.prefsGetErr != nil {
		return nil, f.s.prefsGetErr
	}
	doc, ok := f.s.prefs[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return doc, nil
}

func (f *fakePrefs) Save(_ context.Context, userID string, p models.Preferences) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.prefsSaveErr != nil {
		return f.s.prefsSaveErr
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	f.s.prefs[userID] = b
	return nil
}

// --- service wiring ---

type fixture struct {
	db       *sql.DB
	mock     sqlmock.Sqlmock
	store    *memStore
	views    *recordingViews
	notifier *fakeNotifier
	tasks    *TaskService
	tutorial *TutorialService
	profiles *ProfileService
	prefs    *PreferenceService
}

func newFixture(t *testing.T, transactional bool) *fixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	store := newMemStore()
	rm := &fakeRepoManager{s: store}
	views := &recordingViews{}
	deps := Deps{Views: views, Now: func() time.Time { return fixedNow }}
	notifier := &fakeNotifier{}

	taskSvc := NewTaskService(db, rm, deps)
	tutorial := NewTutorialService(db, rm, taskSvc, deps)
	return &fixture{
		db:       db,
		mock:     mock,
		store:    store,
		views:    views,
		notifier: notifier,
		tasks:    taskSvc,
		tutorial: tutorial,
		profiles: NewProfileService(db, rm, tutorial, notifier, transactional, deps),
		prefs:    NewPreferenceService(db, rm, deps),
	}
}

func strPtr(s string) *string { return &s }
