package registry

import (
	"testing"

	"github.com/openmohaa/stats-api/internal/model"
	"github.com/openmohaa/stats-api/internal/session"
)

func newTestSession() *session.Session {
	m := &model.Map{
		ID:          "m1",
		Roads:       []model.Road{{Start: model.Point{X: 0, Y: 0}, End: model.Point{X: 10, Y: 0}}},
		BagCapacity: 3,
		LootTypes:   []model.LootType{{Name: "key", Value: 5}},
	}
	return session.New(m, 1)
}

func TestRegistry_JoinIsIdempotentPerName(t *testing.T) {
	r := New()
	sess := newTestSession()

	p1, tok1, err := r.Join("m1", "alice", sess, model.Point{}, 3)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	p2, tok2, err := r.Join("m1", "alice", sess, model.Point{}, 3)
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if tok1 != tok2 {
		t.Fatalf("expected rejoining the same name to return the same token")
	}
	if p1.Dog.ID != p2.Dog.ID {
		t.Fatalf("expected same dog across rejoins")
	}
}

func TestRegistry_FindByTokenUnknown(t *testing.T) {
	r := New()
	sess := newTestSession()

	_, ok := r.FindByToken(TokenFromString("deadbeef"), sess)
	if ok {
		t.Fatalf("expected unknown token to not resolve")
	}
}

func TestRegistry_RemoveRetiredClearsTokenAndDog(t *testing.T) {
	r := New()
	sess := newTestSession()

	_, tok, err := r.Join("m1", "bob", sess, model.Point{}, 3)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	dog, ok := r.FindByToken(tok, sess)
	if !ok {
		t.Fatalf("expected player to resolve before retirement")
	}
	dog.Dog.Retired = true

	stats := r.RemoveRetired("m1", sess)
	if len(stats) != 1 || stats[0].Name != "bob" {
		t.Fatalf("expected one retired stat row for bob, got %+v", stats)
	}

	if _, ok := r.FindByToken(tok, sess); ok {
		t.Fatalf("expected token to be revoked after retirement")
	}
	if _, ok := sess.Dog(dog.Dog.ID); ok {
		t.Fatalf("expected dog to be removed from the session")
	}
}

func TestRegistry_PlayersInSessionSortedByDogID(t *testing.T) {
	r := New()
	sess := newTestSession()

	r.Join("m1", "carol", sess, model.Point{}, 3)
	r.Join("m1", "dave", sess, model.Point{}, 3)
	r.Join("m1", "erin", sess, model.Point{}, 3)

	players := r.PlayersInSession("m1", sess)
	if len(players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(players))
	}
	for i := 1; i < len(players); i++ {
		if players[i-1].Dog.ID >= players[i].Dog.ID {
			t.Fatalf("expected players sorted ascending by dog id")
		}
	}
}
