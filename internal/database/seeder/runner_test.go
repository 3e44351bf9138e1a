package seeder

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"jobmatch/internal/database"

	"github.com/stretchr/testify/assert"
)

type stubDB struct{ database.DB }

func (stubDB) SQLDB() *sql.DB { return nil }

type stubSeeder struct {
	name string
	err  error
	ran  *[]string
}

func (s stubSeeder) Name() string { return s.name }

func (s stubSeeder) Run(context.Context, database.DB) error {
	*s.ran = append(*s.ran, s.name)
	return s.err
}

func TestRunner_RunsInOrderAndStopsOnError(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	r := Runner{Seeders: []Seeder{
		stubSeeder{name: "a", ran: &ran},
		nil,
		stubSeeder{name: "b", err: boom, ran: &ran},
		stubSeeder{name: "c", ran: &ran},
	}}

	err := r.Run(context.Background(), stubDB{})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "seed b")
	assert.Equal(t, []string{"a", "b"}, ran)
}

func TestRunner_NilDB(t *testing.T) {
	assert.Error(t, Runner{}.Run(context.Background(), nil))
}

func TestDefaults(t *testing.T) {
	assert.NotEmpty(t, Defaults())
}
