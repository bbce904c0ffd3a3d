package journal_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quillhaven/journal-backend/internal/data/repos"
	"github.com/quillhaven/journal-backend/internal/data/repos/testutil"
)

func TestEntryRepoListAccessible(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := repos.NewEntryRepo(tx, log)

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	grantee := testutil.SeedUser(t, ctx, tx, "grantee@example.com")
	stranger := testutil.SeedUser(t, ctx, tx, "stranger@example.com")

	base := time.Now().UTC().Add(-time.Hour)
	own1 := testutil.SeedEntry(t, ctx, tx, owner.ID, "first", base)
	own2 := testutil.SeedEntry(t, ctx, tx, owner.ID, "second", base.Add(10*time.Minute))
	own3 := testutil.SeedEntry(t, ctx, tx, owner.ID, "third", base.Add(20*time.Minute))

	ids := []uuid.UUID{own1.ID, own2.ID, own3.ID}

	// Owner sees everything, ordered oldest first.
	got, err := repo.ListAccessible(ctx, nil, owner.ID, ids)
	if err != nil {
		t.Fatalf("ListAccessible(owner): %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("owner: expected 3 entries, got %d", len(got))
	}
	for i, want := range ids {
		if got[i].ID != want {
			t.Fatalf("owner: entry %d out of order: got %s want %s", i, got[i].ID, want)
		}
	}

	// Grantee sees nothing without a share.
	got, err = repo.ListAccessible(ctx, nil, grantee.ID, ids)
	if err != nil {
		t.Fatalf("ListAccessible(grantee, no shares): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("grantee without shares: expected 0 entries, got %d", len(got))
	}

	// Active share grants access to that entry only.
	testutil.SeedShare(t, ctx, tx, own1.ID, owner.ID, grantee.ID, nil)
	got, err = repo.ListAccessible(ctx, nil, grantee.ID, ids)
	if err != nil {
		t.Fatalf("ListAccessible(grantee, active share): %v", err)
	}
	if len(got) != 1 || got[0].ID != own1.ID {
		t.Fatalf("grantee with active share: expected [%s], got %d entries", own1.ID, len(got))
	}

	// Expired shares do not grant access.
	past := time.Now().UTC().Add(-time.Minute)
	testutil.SeedShare(t, ctx, tx, own2.ID, owner.ID, grantee.ID, &past)
	got, err = repo.ListAccessible(ctx, nil, grantee.ID, ids)
	if err != nil {
		t.Fatalf("ListAccessible(grantee, expired share): %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expired share leaked: expected 1 entry, got %d", len(got))
	}

	// Revoked shares do not grant access.
	revoked := testutil.SeedShare(t, ctx, tx, own3.ID, owner.ID, grantee.ID, nil)
	shareRepo := repos.NewEntryShareRepo(tx, log)
	if err := shareRepo.Revoke(ctx, nil, revoked.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	got, err = repo.ListAccessible(ctx, nil, grantee.ID, ids)
	if err != nil {
		t.Fatalf("ListAccessible(grantee, revoked share): %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("revoked share leaked: expected 1 entry, got %d", len(got))
	}

	// Shares never leak to third parties.
	got, err = repo.ListAccessible(ctx, nil, stranger.ID, ids)
	if err != nil {
		t.Fatalf("ListAccessible(stranger): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("stranger: expected 0 entries, got %d", len(got))
	}
}

func TestEntryRepoListAccessibleFiltersRequestedIDs(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := repos.NewEntryRepo(tx, log)
	owner := testutil.SeedUser(t, ctx, tx, "only@example.com")

	base := time.Now().UTC()
	in := testutil.SeedEntry(t, ctx, tx, owner.ID, "requested", base)
	testutil.SeedEntry(t, ctx, tx, owner.ID, "not requested", base)

	got, err := repo.ListAccessible(ctx, nil, owner.ID, []uuid.UUID{in.ID})
	if err != nil {
		t.Fatalf("ListAccessible: %v", err)
	}
	if len(got) != 1 || got[0].ID != in.ID {
		t.Fatalf("expected only the requested entry, got %d entries", len(got))
	}
}
