package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ShivamThakkar1/Wallswipe-invite/internal/model"
)

func newInviteFixture(t *testing.T) (InviteService, *mockInviterRepo, *fakeMessenger) {
	t.Helper()
	repo, inviters, _, _ := newTestRepo()
	msgr := newFakeMessenger()
	svc := NewInviteService(repo, msgr, 5, zap.NewNop())
	return svc, inviters, msgr
}

func TestEnsureProfile_CreatesOnFirstContact(t *testing.T) {
	svc, inviters, _ := newInviteFixture(t)
	ctx := context.Background()

	inviter, err := svc.EnsureProfile(ctx, 100, "Asha")
	if err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	if inviter.TelegramID != 100 || inviter.Name != "Asha" {
		t.Errorf("unexpected profile %+v", inviter)
	}
	if inviter.InvitedCount != 0 || len(inviter.ClaimedTiers) != 0 {
		t.Errorf("fresh profile not zeroed: %+v", inviter)
	}

	if _, err := inviters.GetByTelegramID(ctx, 100); err != nil {
		t.Errorf("profile not persisted: %v", err)
	}
}

func TestEnsureProfile_ReturnsExisting(t *testing.T) {
	svc, inviters, _ := newInviteFixture(t)
	ctx := context.Background()

	inviters.inviters[100] = &model.Inviter{TelegramID: 100, Name: "Asha", InvitedCount: 7}

	inviter, err := svc.EnsureProfile(ctx, 100, "Renamed")
	if err != nil {
		t.Fatal(err)
	}
	if inviter.Name != "Asha" || inviter.InvitedCount != 7 {
		t.Errorf("existing profile was replaced: %+v", inviter)
	}
}

func TestEnsureProfile_ConcurrentCreateFallsBackToRead(t *testing.T) {
	svc, inviters, _ := newInviteFixture(t)
	ctx := context.Background()

	// Simulate the unique-violation race: the insert fails because another
	// request created the row between our read and write.
	inviters.createErr = errors.New("duplicate key value violates unique constraint")
	inviters.inviters[100] = &model.Inviter{TelegramID: 100, Name: "Asha"}

	if _, err := svc.EnsureProfile(ctx, 101, "Bela"); err == nil {
		t.Fatal("create failed with no row to fall back to, expected an error")
	}

	inviter, err := svc.EnsureProfile(ctx, 100, "Asha")
	if err != nil {
		t.Fatalf("EnsureProfile after race: %v", err)
	}
	if inviter.TelegramID != 100 {
		t.Errorf("unexpected profile %+v", inviter)
	}
}

func TestGetOrCreateLink_Idempotent(t *testing.T) {
	svc, _, msgr := newInviteFixture(t)
	ctx := context.Background()
	msgr.links = []string{"https://t.me/+first", "https://t.me/+second"}

	link1, err := svc.GetOrCreateLink(ctx, 100, "Asha")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	link2, err := svc.GetOrCreateLink(ctx, 100, "Asha")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if link1 != "https://t.me/+first" {
		t.Errorf("link = %q", link1)
	}
	if link2 != link1 {
		t.Errorf("repeated call returned a different link: %q vs %q", link2, link1)
	}
}

// racingMessenger binds a competing link into the repo while the Telegram
// call is in flight, reproducing the lost-claim interleaving.
type racingMessenger struct {
	*fakeMessenger
	inviters *mockInviterRepo
	winner   string
}

func (r *racingMessenger) CreateInviteLink(name string) (string, error) {
	r.inviters.mu.Lock()
	r.inviters.inviters[100].InviteLink = &r.winner
	r.inviters.mu.Unlock()
	return r.fakeMessenger.CreateInviteLink(name)
}

func TestGetOrCreateLink_ClaimLostReturnsWinner(t *testing.T) {
	repo, inviters, _, _ := newTestRepo()
	ctx := context.Background()

	inviters.inviters[100] = &model.Inviter{TelegramID: 100, Name: "Asha"}

	base := newFakeMessenger()
	base.links = []string{"https://t.me/+loser"}
	msgr := &racingMessenger{fakeMessenger: base, inviters: inviters, winner: "https://t.me/+winner"}
	svc := NewInviteService(repo, msgr, 5, zap.NewNop())

	// Our claim loses to the concurrent binding; the winner's link comes back.
	link, err := svc.GetOrCreateLink(ctx, 100, "Asha")
	if err != nil {
		t.Fatal(err)
	}
	if link != "https://t.me/+winner" {
		t.Errorf("link = %q, want the winner's link", link)
	}

	stored, _ := inviters.GetByTelegramID(ctx, 100)
	if stored.InviteLink == nil || *stored.InviteLink != "https://t.me/+winner" {
		t.Errorf("bound link = %v, the losing claim must not overwrite it", stored.InviteLink)
	}
}

func TestGetOrCreateLink_IssuanceFailurePropagates(t *testing.T) {
	svc, _, msgr := newInviteFixture(t)
	msgr.linkErr = errors.New("bot lacks invite rights")

	if _, err := svc.GetOrCreateLink(context.Background(), 100, "Asha"); err == nil {
		t.Fatal("issuance failure must propagate")
	}
}

func TestProgress(t *testing.T) {
	cases := []struct {
		credits, step   int
		next, remaining int
	}{
		{0, 5, 5, 5},
		{3, 5, 5, 2},
		{7, 5, 10, 3},
		{10, 5, 15, 5}, // exactly at a boundary the next step is the target
		{12, 10, 20, 8},
	}
	for _, tc := range cases {
		next, remaining := Progress(tc.credits, tc.step)
		if next != tc.next || remaining != tc.remaining {
			t.Errorf("Progress(%d, %d) = (%d, %d), want (%d, %d)",
				tc.credits, tc.step, next, remaining, tc.next, tc.remaining)
		}
	}
}
