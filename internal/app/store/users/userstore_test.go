package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/hirehub/internal/app/store/users"
	"github.com/dalemusser/hirehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Upsert_CreatesThenUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Upsert(ctx, userstore.Profile{
		ClerkID:   "user_1",
		Email:     " Ada@Example.com ",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "ada@example.com" {
		t.Errorf("Email: got %q, want ada@example.com", created.Email)
	}
	if created.FullName != "Ada Lovelace" {
		t.Errorf("FullName: got %q, want Ada Lovelace", created.FullName)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	updated, err := store.Upsert(ctx, userstore.Profile{ClerkID: "user_1", Email: "ada@lovelace.dev", FullName: "Countess Ada"})
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("expected same ID, got %v and %v", created.ID, updated.ID)
	}
	if updated.FullName != "Countess Ada" {
		t.Errorf("FullName: got %q", updated.FullName)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("CreatedAt must not change on update")
	}

	n, err := db.Collection("users").CountDocuments(ctx, bson.M{"clerk_id": "user_1"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected exactly one user row, got %d", n)
	}
}

func TestStore_Upsert_RequiresClerkID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Upsert(ctx, userstore.Profile{Email: "x@example.com"}); err == nil {
		t.Fatal("expected error for missing clerk id")
	}
}

func TestStore_Lookups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "user_2", "grace@example.com", "Grace Hopper")

	byClerk, err := store.GetByClerkID(ctx, "user_2")
	if err != nil || byClerk.ID != u.ID {
		t.Fatalf("GetByClerkID = (%v, %v)", byClerk.ID, err)
	}
	byEmail, err := store.GetByEmail(ctx, "GRACE@example.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("GetByEmail = (%v, %v)", byEmail.ID, err)
	}
	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("GetByID(unknown) err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetByEmail(ctx, "  "); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("GetByEmail(blank) err = %v, want ErrNotFound", err)
	}

	got, err := store.GetByIDs(ctx, []primitive.ObjectID{u.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 1 || got[u.ID].FullName != "Grace Hopper" {
		t.Errorf("GetByIDs = %+v", got)
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "user_3", "linus@example.com", "Linus")
	f := userstore.NewFetcher(db)

	su := f.FetchUser(ctx, "user_3")
	if su == nil {
		t.Fatal("expected session user")
	}
	if su.ID != u.ID.Hex() || su.ClerkID != "user_3" || su.Name != "Linus" {
		t.Errorf("unexpected session user: %+v", su)
	}
	if f.FetchUser(ctx, "user_missing") != nil {
		t.Error("expected nil for unknown identity")
	}
	if f.FetchUser(ctx, "") != nil {
		t.Error("expected nil for empty identity")
	}
}
