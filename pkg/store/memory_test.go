package store

import (
	"context"
	"testing"
	"time"

	"github.com/tdai-app/tdai/pkg/core/types"
)

func TestMemory_EnsureUser(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	u, err := m.EnsureUser(ctx, "  Ayse@Example.COM ")
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "ayse@example.com" {
		t.Errorf("email = %q, want normalized", u.Email)
	}
	if u.Profile.Name != "ayse" {
		t.Errorf("name = %q, want ayse", u.Profile.Name)
	}
	if u.Activity.CreatedAt.IsZero() || u.Activity.LastLogin.IsZero() {
		t.Error("activity timestamps not set")
	}

	created := u.Activity.CreatedAt
	again, err := m.EnsureUser(ctx, "ayse@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !again.Activity.CreatedAt.Equal(created) {
		t.Error("CreatedAt changed on second login")
	}
	if again.Activity.LastLogin.Before(created) {
		t.Error("LastLogin not bumped")
	}
}

func TestMemory_UpdateProfile(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.EnsureUser(ctx, "ayse@example.com")
	profile := types.UserProfile{Name: "Ayşe", AvatarURL: "https://example.com/a.png"}
	if err := m.UpdateProfile(ctx, "ayse@example.com", profile); err != nil {
		t.Fatal(err)
	}

	u, _ := m.EnsureUser(ctx, "ayse@example.com")
	if u.Profile != profile {
		t.Errorf("profile = %+v, want %+v", u.Profile, profile)
	}
}

func TestMemory_ChatLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	email := "ayse@example.com"

	older := types.ChatSession{ID: "a", Title: "ilk", CreatedAt: time.Now().Add(-time.Hour)}
	newer := types.ChatSession{ID: "b", Title: "ikinci", CreatedAt: time.Now()}
	for _, chat := range []types.ChatSession{older, newer} {
		if err := m.SaveChat(ctx, email, chat); err != nil {
			t.Fatal(err)
		}
	}

	chats, err := m.ListChats(ctx, email)
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 2 || chats[0].ID != "b" {
		t.Fatalf("chats = %+v, want newest first", chats)
	}

	// Saving the same ID replaces the session.
	newer.Title = "güncellendi"
	m.SaveChat(ctx, email, newer)
	chats, _ = m.ListChats(ctx, email)
	if len(chats) != 2 || chats[0].Title != "güncellendi" {
		t.Fatalf("chats after resave = %+v", chats)
	}

	if err := m.DeleteChat(ctx, email, "a"); err != nil {
		t.Fatal(err)
	}
	chats, _ = m.ListChats(ctx, email)
	if len(chats) != 1 || chats[0].ID != "b" {
		t.Fatalf("chats after delete = %+v", chats)
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"User@Example.com", "user@example.com"},
		{"  spaced@x.dev  ", "spaced@x.dev"},
		{"plain@x.dev", "plain@x.dev"},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
