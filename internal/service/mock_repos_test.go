package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/ShivamThakkar1/Wallswipe-invite/internal/model"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/repository"
	pkgerrors "github.com/ShivamThakkar1/Wallswipe-invite/pkg/errors"
)

// ── mock inviter repository ──

type mockInviterRepo struct {
	mu       sync.Mutex
	inviters map[int64]*model.Inviter

	createErr error
}

func newMockInviterRepo() *mockInviterRepo {
	return &mockInviterRepo{inviters: make(map[int64]*model.Inviter)}
}

func (m *mockInviterRepo) Create(_ context.Context, inviter *model.Inviter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.inviters[inviter.TelegramID]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}
	cp := *inviter
	m.inviters[inviter.TelegramID] = &cp
	return nil
}

func (m *mockInviterRepo) GetByTelegramID(_ context.Context, telegramID int64) (*model.Inviter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inviter, ok := m.inviters[telegramID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *inviter
	return &cp, nil
}

func (m *mockInviterRepo) GetByInviteLink(_ context.Context, link string) (*model.Inviter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inviter := range m.inviters {
		if inviter.InviteLink != nil && *inviter.InviteLink == link {
			cp := *inviter
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviterRepo) ClaimInviteLink(_ context.Context, telegramID int64, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inviter, ok := m.inviters[telegramID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if inviter.InviteLink != nil {
		return pkgerrors.ErrLinkClaimLost
	}
	inviter.InviteLink = &link
	return nil
}

func (m *mockInviterRepo) UpdateInvitedCount(_ context.Context, telegramID int64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inviter, ok := m.inviters[telegramID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inviter.InvitedCount = count
	return nil
}

func (m *mockInviterRepo) MergeClaimedTiers(_ context.Context, telegramID int64, claimed model.StringArray) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inviter, ok := m.inviters[telegramID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inviter.ClaimedTiers = claimed
	return nil
}

func (m *mockInviterRepo) ListTop(_ context.Context, limit int) ([]model.Inviter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Inviter
	for _, inviter := range m.inviters {
		if inviter.InvitedCount > 0 {
			out = append(out, *inviter)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvitedCount > out[j].InvitedCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockInviterRepo) ListAll(_ context.Context) ([]model.Inviter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Inviter, 0, len(m.inviters))
	for _, inviter := range m.inviters {
		out = append(out, *inviter)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TelegramID < out[j].TelegramID })
	return out, nil
}

// ── mock referral repository ──

// mockReferralRepo enforces joinee uniqueness under a mutex the way the
// database constraint does, so concurrent-insert tests exercise the same
// collapse-to-one behavior.
type mockReferralRepo struct {
	mu        sync.Mutex
	referrals []model.Referral
	joinees   map[int64]bool

	insertErr error
}

func newMockReferralRepo() *mockReferralRepo {
	return &mockReferralRepo{joinees: make(map[int64]bool)}
}

func (m *mockReferralRepo) Insert(_ context.Context, referral *model.Referral) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if m.joinees[referral.JoineeID] {
		return pkgerrors.ErrDuplicateAttribution
	}
	m.joinees[referral.JoineeID] = true
	m.referrals = append(m.referrals, *referral)
	return nil
}

func (m *mockReferralRepo) CountByInviter(_ context.Context, inviterID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, r := range m.referrals {
		if r.InviterID == inviterID {
			count++
		}
	}
	return count, nil
}

func (m *mockReferralRepo) records() []model.Referral {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Referral, len(m.referrals))
	copy(out, m.referrals)
	return out
}

// ── mock reward tier repository ──

type mockRewardTierRepo struct {
	mu    sync.Mutex
	tiers map[string]*model.RewardTier
}

func newMockRewardTierRepo() *mockRewardTierRepo {
	return &mockRewardTierRepo{tiers: make(map[string]*model.RewardTier)}
}

func (m *mockRewardTierRepo) Upsert(_ context.Context, tier *model.RewardTier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tier
	m.tiers[tier.TierID] = &cp
	return nil
}

func (m *mockRewardTierRepo) GetByID(_ context.Context, tierID string) (*model.RewardTier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tier, ok := m.tiers[tierID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *tier
	return &cp, nil
}

func (m *mockRewardTierRepo) ListAsc(_ context.Context) ([]model.RewardTier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.RewardTier, 0, len(m.tiers))
	for _, tier := range m.tiers {
		out = append(out, *tier)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Threshold != out[j].Threshold {
			return out[i].Threshold < out[j].Threshold
		}
		return out[i].TierID < out[j].TierID
	})
	return out, nil
}

// ── fake messenger ──

type sentMessage struct {
	ChatID int64
	Text   string
}

type sentDocument struct {
	ChatID  int64
	FileID  string
	Caption string
}

// fakeMessenger records outbound traffic and fails on demand per file id or
// globally.
type fakeMessenger struct {
	mu        sync.Mutex
	messages  []sentMessage
	documents []sentDocument

	failMessages  bool
	failChatIDs   map[int64]bool
	failFileIDs   map[string]bool
	links         []string
	linkErr       error
	nextLinkIndex int
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		failChatIDs: make(map[int64]bool),
		failFileIDs: make(map[string]bool),
	}
}

func (f *fakeMessenger) SendMessage(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMessages || f.failChatIDs[chatID] {
		return errors.New("send failed")
	}
	f.messages = append(f.messages, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeMessenger) SendDocument(chatID int64, fileID, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFileIDs[fileID] {
		return errors.New("document delivery failed")
	}
	f.documents = append(f.documents, sentDocument{ChatID: chatID, FileID: fileID, Caption: caption})
	return nil
}

func (f *fakeMessenger) CreateInviteLink(_ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.linkErr != nil {
		return "", f.linkErr
	}
	if f.nextLinkIndex < len(f.links) {
		link := f.links[f.nextLinkIndex]
		f.nextLinkIndex++
		return link, nil
	}
	return "https://t.me/+generated", nil
}

func (f *fakeMessenger) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.messages))
	copy(out, f.messages)
	return out
}

func (f *fakeMessenger) sentDocuments() []sentDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentDocument, len(f.documents))
	copy(out, f.documents)
	return out
}

// ── assembly helper ──

func newTestRepo() (*repository.Repository, *mockInviterRepo, *mockReferralRepo, *mockRewardTierRepo) {
	inviters := newMockInviterRepo()
	referrals := newMockReferralRepo()
	tiers := newMockRewardTierRepo()
	repo := &repository.Repository{
		Inviter:    inviters,
		Referral:   referrals,
		RewardTier: tiers,
	}
	return repo, inviters, referrals, tiers
}
