package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coursehub/internal/common"
	"coursehub/internal/common/security"
	"coursehub/internal/domain/repository"
	"coursehub/internal/domain/repository/memstore"
	"coursehub/internal/platform/storage"
)

type testEnv struct {
	db        *memstore.DB
	repos     repository.Set
	uploadDir string
	store     *storage.LocalStore

	auth       *AuthService
	users      *UserService
	catalog    *CatalogService
	enrollment *EnrollmentService
	grades     *GradeService
	homework   *HomeworkService
	files      *FileService
	messages   *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	require.NoError(t, err)

	db := memstore.New()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	// every stored row gets a distinct, increasing timestamp
	db.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	repos := db.Set()
	log := zap.NewNop()
	janitor := storage.InlineJanitor{Store: store, Log: log}
	return &testEnv{
		db:         db,
		repos:      repos,
		uploadDir:  dir,
		store:      store,
		auth:       NewAuthService(repos.Users, security.NewTokenIssuer([]byte("test-secret"), time.Hour), nil, log),
		users:      NewUserService(repos.Users),
		catalog:    NewCatalogService(repos.Courses, repos.Users),
		enrollment: NewEnrollmentService(repos.Enrollments, repos.Users, log),
		grades:     NewGradeService(repos.Grades, repos.Homework),
		homework:   NewHomeworkService(repos.Homework, store, janitor, log),
		files:      NewFileService(repos.Files, store, janitor, log),
		messages:   NewMessageService(repos.Messages),
	}
}

func (e *testEnv) addUser(t *testing.T, name, email, role string) int64 {
	t.Helper()
	u, err := e.users.AddUser(context.Background(), AddUserRequest{FullName: name, Email: email, Password: "secret", Role: role})
	require.NoError(t, err)
	return u.ID
}

func (e *testEnv) addOffer(t *testing.T, lecturerID int64, name string, seats int, price float64) int64 {
	t.Helper()
	o, err := e.catalog.CreateOffer(context.Background(), CreateOfferRequest{
		CourseName: name, LecturerID: common.ID(lecturerID), Schedule: "Sun 08:30", Price: price, MaxSeats: seats,
	})
	require.NoError(t, err)
	return o.ID
}

func (e *testEnv) remaining(t *testing.T, offerID int64) int {
	t.Helper()
	o, err := e.repos.Courses.FindOffer(context.Background(), offerID)
	require.NoError(t, err)
	return o.RemainingSeats
}

func (e *testEnv) stored(key string) bool {
	_, err := os.Stat(filepath.Join(e.uploadDir, filepath.FromSlash(key)))
	return err == nil
}

func gradePtr(g float64) *float64 { return &g }

// readDirRecursive lists every regular file under dir.
func readDirRecursive(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
