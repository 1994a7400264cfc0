package usecase

import (
	"cmp"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/gopatient/internal/patient/entity"
	"github.com/shandysiswandi/gopatient/internal/pkg/clock"
	"github.com/shandysiswandi/gopatient/internal/pkg/config"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/goroutine"
	"github.com/shandysiswandi/gopatient/internal/pkg/instrument"
	"github.com/shandysiswandi/gopatient/internal/pkg/mediator"
	"github.com/shandysiswandi/gopatient/internal/pkg/storage"
	"github.com/shandysiswandi/gopatient/internal/pkg/validator"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC)

type fakeDB struct {
	mu       sync.Mutex
	patients map[int64]entity.Patient
	err      error
	listErr  error
	filters  []entity.PatientListFilter
}

func newFakeDB(ps ...entity.Patient) *fakeDB {
	db := &fakeDB{patients: make(map[int64]entity.Patient)}
	for _, p := range ps {
		db.patients[p.ID] = p
	}
	return db
}

func (f *fakeDB) GetPatientByID(_ context.Context, id int64) (*entity.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.patients[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &p, nil
}

func (f *fakeDB) ExistsPatientByMRN(_ context.Context, mrn string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, p := range f.patients {
		if p.MedicalRecordNumber == mrn {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) ExistsPatientByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, p := range f.patients {
		if p.Email != nil && *p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ListPatients returns patients ordered by id.
func (f *fakeDB) ListPatients(_ context.Context, filter entity.PatientListFilter) ([]entity.Patient, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.listErr != nil {
		return nil, 0, f.listErr
	}

	matched := make([]entity.Patient, 0, len(f.patients))
	for _, p := range f.patients {
		if filter.Search == "" || strings.Contains(strings.ToLower(p.FullName()), strings.ToLower(filter.Search)) {
			matched = append(matched, p)
		}
	}
	slices.SortFunc(matched, func(a, b entity.Patient) int { return cmp.Compare(a.ID, b.ID) })

	start := min(int(filter.Offset), len(matched))
	end := min(start+int(filter.Limit), len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (f *fakeDB) CountPatients(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.patients)), nil
}

func (f *fakeDB) CreatePatient(_ context.Context, p entity.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.patients {
		if existing.MedicalRecordNumber == p.MedicalRecordNumber {
			return goerror.ErrConflict
		}
	}
	f.patients[p.ID] = p
	return nil
}

func (f *fakeDB) CreatePatients(_ context.Context, ps []entity.Patient) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	for _, p := range ps {
		f.patients[p.ID] = p
	}
	return int64(len(ps)), nil
}

type fakeCache struct {
	mu       sync.Mutex
	patients map[int64]entity.Patient
	err      error
	sets     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{patients: make(map[int64]entity.Patient)}
}

func (f *fakeCache) GetPatient(_ context.Context, id int64) (*entity.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.patients[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &p, nil
}

func (f *fakeCache) SetPatient(_ context.Context, p entity.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.err != nil {
		return f.err
	}
	f.patients[p.ID] = p
	return nil
}

type fakeMQ struct {
	mu     sync.Mutex
	events []PatientRegisteredEvent
	err    error
}

func (f *fakeMQ) PublishPatientRegistered(_ context.Context, msg PatientRegisteredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return f.err
}

func (f *fakeMQ) Events() []PatientRegisteredEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PatientRegisteredEvent(nil), f.events...)
}

type seqID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type failingStorage struct {
	storage.Storage
}

func (failingStorage) Put(context.Context, string, io.Reader, storage.PutOptions) (storage.Object, error) {
	return storage.Object{}, errors.New("bucket unreachable")
}

type fixture struct {
	db        *fakeDB
	cache     *fakeCache
	mq        *fakeMQ
	store     storage.Storage
	goroutine *goroutine.Manager
	uc        *Usecase
}

func newFixture(t *testing.T, yaml string, ps ...entity.Patient) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	f := &fixture{
		db:        newFakeDB(ps...),
		cache:     newFakeCache(),
		mq:        &fakeMQ{},
		store:     storage.NewMemory("exports", "http://files.test"),
		goroutine: goroutine.NewManager(10),
	}
	f.uc = New(Dependency{
		RepoDB:        f.db,
		RepoCache:     f.cache,
		RepoMessaging: f.mq,
		Storage:       f.store,
		Config:        cfg,
		UID:           &seqID{next: 100},
		Clock:         clock.Fixed(testNow),
		Instrument:    instrument.NewNoop(),
		Goroutine:     f.goroutine,
	})
	return f
}

// mediator returns a mediator with every patient handler and validator registered.
func (f *fixture) mediator(t *testing.T) *mediator.Mediator {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	m := mediator.New(mediator.Dependency{Clock: clock.Fixed(testNow)})
	require.NoError(t, f.uc.Register(m, v))
	return m
}

func ptr(s string) *string { return &s }

func samplePatient(id int64, first, last, mrn string) entity.Patient {
	email := strings.ToLower(first) + "@example.com"
	return entity.NewPatient(id, first, last, time.Date(1985, time.July, 1, 0, 0, 0, 0, time.UTC), mrn, &email, nil)
}
