package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/inventar/internal/db"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/policy"
)

var (
	admin      = policy.Actor{UserID: 1, Username: "root", Role: model.RoleAdmin}
	alice      = policy.Actor{UserID: 2, Username: "alice", Role: model.RoleIT}
	bob        = policy.Actor{UserID: 3, Username: "bob", Role: model.RoleIT}
	manager    = policy.Actor{UserID: 4, Username: "mia", Role: model.RoleManager}
	supervisor = policy.Actor{UserID: 5, Username: "sam", Role: model.RoleSupervisor}
	auditor    = policy.Actor{UserID: 6, Username: "ada", Role: model.RoleAudit}
)

// clock is a settable time source for services under test.
type clock struct {
	t time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return db.NewTestDB(t)
}
