package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jvasek/tipliga/internal/domain/audit"
	"github.com/jvasek/tipliga/internal/domain/event"
	"github.com/jvasek/tipliga/internal/domain/league"
	"github.com/jvasek/tipliga/internal/domain/player"
	"github.com/jvasek/tipliga/internal/domain/view"
	"github.com/jvasek/tipliga/internal/infrastructure/repository/memory"
	"github.com/jvasek/tipliga/internal/platform/id"
	"github.com/jvasek/tipliga/internal/platform/logging"

	. "github.com/jvasek/tipliga/internal/usecase"
)

// baseTime anchors every deadline in the suite; services run with a frozen
// clock derived from it.
var baseTime = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type recordingAuditor struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingAuditor) Record(_ context.Context, entry audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingAuditor) byAction(action audit.Action) []audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Entry
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type recordingInvalidator struct {
	mu      sync.Mutex
	changes []view.Change
}

func (r *recordingInvalidator) Invalidate(_ context.Context, change view.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
}

func (r *recordingInvalidator) saw(change view.Change) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.changes {
		if c == change {
			return true
		}
	}
	return false
}

// harness seeds one soccer league with an admin and two plain members.
type harness struct {
	fixture     *memory.Fixture
	repos       Repositories
	uow         *memory.UnitOfWork
	auditor     *recordingAuditor
	invalidator *recordingInvalidator
	ids         id.Generator
	logger      *logging.Logger
}

const (
	testLeagueID       = "liga-2026"
	testAdminUserID    = "user-admin"
	testAdminMemberID  = "mem-admin"
	testMemberUserID   = "user-novak"
	testMemberID       = "mem-novak"
	testMember2UserID  = "user-svoboda"
	testMember2ID      = "mem-svoboda"
	testHomeTeamID     = "team-home"
	testAwayTeamID     = "team-away"
	testHomePlayerID   = "player-home-9"
	testAwayPlayerID   = "player-away-11"
	testOutsidePlayer  = "player-elsewhere"
	testInactiveUserID = "user-inactive"
	testInactiveMemID  = "mem-inactive"
)

func newHarness() *harness {
	f := memory.NewFixture()

	f.Leagues.Put(league.League{ID: testLeagueID, Name: "Tipliga", Season: "2026", Sport: league.SportSoccer, IsActive: true})
	f.Memberships.Put(league.Membership{ID: testAdminMemberID, LeagueID: testLeagueID, UserID: testAdminUserID, Role: league.RoleAdmin, IsActive: true})
	f.Memberships.Put(league.Membership{ID: testMemberID, LeagueID: testLeagueID, UserID: testMemberUserID, Role: league.RoleMember, IsActive: true})
	f.Memberships.Put(league.Membership{ID: testMember2ID, LeagueID: testLeagueID, UserID: testMember2UserID, Role: league.RoleMember, IsActive: true})
	f.Memberships.Put(league.Membership{ID: testInactiveMemID, LeagueID: testLeagueID, UserID: testInactiveUserID, Role: league.RoleMember, IsActive: false})

	f.Players.Put(player.Player{ID: testHomePlayerID, TeamID: testHomeTeamID, Name: "Home Nine", Position: "forward"})
	f.Players.Put(player.Player{ID: testAwayPlayerID, TeamID: testAwayTeamID, Name: "Away Eleven", Position: "forward"})
	f.Players.Put(player.Player{ID: testOutsidePlayer, TeamID: "team-elsewhere", Name: "Stranger", Position: "defender"})

	return &harness{
		fixture:     f,
		repos:       f.Repositories(),
		uow:         memory.NewUnitOfWork(f),
		auditor:     &recordingAuditor{},
		invalidator: &recordingInvalidator{},
		ids:         id.NewRandomGenerator(),
		logger:      logging.NewNop(),
	}
}

func (h *harness) betService(now time.Time) *BetService {
	svc := NewBetService(h.repos, h.uow, h.auditor, h.invalidator, h.ids, h.logger)
	svc.SetNowForTest(func() time.Time { return now })
	return svc
}

func (h *harness) evaluationService(now time.Time, workers int) *EvaluationService {
	svc := NewEvaluationService(h.repos, h.uow, h.auditor, h.invalidator, workers, h.logger)
	svc.SetNowForTest(func() time.Time { return now })
	return svc
}

func (h *harness) resultService(now time.Time) *ResultService {
	svc := NewResultService(h.repos, h.uow, h.auditor, h.invalidator, h.logger)
	svc.SetNowForTest(func() time.Time { return now })
	return svc
}

// openMatch is a match whose deadline is one hour past the frozen clock.
func (h *harness) openMatch(matchID string) event.Match {
	m := event.Match{
		ID:         matchID,
		LeagueID:   testLeagueID,
		HomeTeamID: testHomeTeamID,
		AwayTeamID: testAwayTeamID,
		StartsAt:   baseTime.Add(time.Hour),
		LockTime:   baseTime.Add(time.Hour),
	}
	h.fixture.Matches.Put(m)
	return m
}

func (h *harness) lockedMatch(matchID string) event.Match {
	m := event.Match{
		ID:         matchID,
		LeagueID:   testLeagueID,
		HomeTeamID: testHomeTeamID,
		AwayTeamID: testAwayTeamID,
		StartsAt:   baseTime.Add(-2 * time.Hour),
		LockTime:   baseTime.Add(-2 * time.Hour),
	}
	h.fixture.Matches.Put(m)
	return m
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }
