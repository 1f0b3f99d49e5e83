package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/ShivamThakkar1/Wallswipe-invite/internal/model"
)

func TestLeaderboardTop_RanksByCredits(t *testing.T) {
	repo, inviters, _, _ := newTestRepo()
	svc := NewLeaderboardService(repo, nil, zap.NewNop())
	ctx := context.Background()

	inviters.inviters[100] = &model.Inviter{TelegramID: 100, Name: "Asha", InvitedCount: 3}
	inviters.inviters[101] = &model.Inviter{TelegramID: 101, Name: "Bela", InvitedCount: 9}
	inviters.inviters[102] = &model.Inviter{TelegramID: 102, Name: "Chen", InvitedCount: 0}

	entries, err := svc.Top(ctx, 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (zero-credit profiles excluded), got %d", len(entries))
	}
	if entries[0].TelegramID != 101 || entries[0].Rank != 1 {
		t.Errorf("first entry %+v, want Bela at rank 1", entries[0])
	}
	if entries[1].TelegramID != 100 || entries[1].Rank != 2 {
		t.Errorf("second entry %+v, want Asha at rank 2", entries[1])
	}
}

func TestLeaderboardTop_RespectsLimit(t *testing.T) {
	repo, inviters, _, _ := newTestRepo()
	svc := NewLeaderboardService(repo, nil, zap.NewNop())

	for i := int64(0); i < 5; i++ {
		inviters.inviters[100+i] = &model.Inviter{TelegramID: 100 + i, InvitedCount: int(i) + 1}
	}

	entries, err := svc.Top(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d entries, want 3", len(entries))
	}
}

func TestLeaderboardExportXLSX(t *testing.T) {
	repo, inviters, _, _ := newTestRepo()
	svc := NewLeaderboardService(repo, nil, zap.NewNop())

	inviters.inviters[100] = &model.Inviter{TelegramID: 100, Name: "Asha", InvitedCount: 4}

	f, err := svc.ExportXLSX(context.Background(), 10)
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}
	sheet := f.GetSheetName(0)

	header, err := f.GetCellValue(sheet, "A1")
	if err != nil {
		t.Fatal(err)
	}
	if header != "Rank" {
		t.Errorf("A1 = %q, want Rank", header)
	}
	name, _ := f.GetCellValue(sheet, "B2")
	if name != "Asha" {
		t.Errorf("B2 = %q, want Asha", name)
	}
	invites, _ := f.GetCellValue(sheet, "D2")
	if invites != "4" {
		t.Errorf("D2 = %q, want 4", invites)
	}
}

func TestBumpScore_NilCacheIsNoOp(t *testing.T) {
	repo, _, _, _ := newTestRepo()
	svc := NewLeaderboardService(repo, nil, zap.NewNop())

	// Must not panic without a cache.
	svc.BumpScore(context.Background(), 100, 3)
}
