// internal/store/roles_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleStore_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "title", "description", "required_skills", "created_at"}).
		AddRow("role-1", "Backend Engineer", "Builds services", []byte(`["Go","Kubernetes"]`), time.Now().UTC())

	mock.ExpectQuery("SELECT (.+) FROM roles").
		WithArgs("role-1").
		WillReturnRows(rows)

	s := NewRoleStore(db)
	role, err := s.Get(context.Background(), "role-1")

	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, "Backend Engineer", role.Title)
	assert.Equal(t, []string{"Go", "Kubernetes"}, role.RequiredSkills)
}

func TestRoleStore_GetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM roles").
		WithArgs("role-missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "required_skills", "created_at"}))

	s := NewRoleStore(db)
	role, err := s.Get(context.Background(), "role-missing")

	require.NoError(t, err)
	assert.Nil(t, role)
}

func TestRoleStore_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("role-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	s := NewRoleStore(db)
	ok, err := s.Exists(context.Background(), "role-1")

	require.NoError(t, err)
	assert.True(t, ok)
}
