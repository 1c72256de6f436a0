package schema

import (
	"testing"

	"github.com/spf13/cobra"
)

func testRoot() *cobra.Command {
	root := &cobra.Command{Use: "walletbeam", Short: "root"}
	send := &cobra.Command{Use: "send", Short: "send a transfer"}
	send.Flags().String("chain", "", "Target chain")
	send.Flags().String("amount", "", "Amount in decimal units")
	sessions := &cobra.Command{Use: "sessions", Short: "manage sessions"}
	sessions.AddCommand(&cobra.Command{Use: "list", Short: "list sessions", Aliases: []string{"ls"}})
	hidden := &cobra.Command{Use: "secret", Hidden: true}
	root.AddCommand(send, sessions, hidden)
	return root
}

func TestBuildFullTree(t *testing.T) {
	s, err := Build(testRoot(), "")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if s.Use != "walletbeam" {
		t.Fatalf("unexpected root: %s", s.Use)
	}
	if len(s.Subcommands) != 2 {
		t.Fatalf("hidden commands must be excluded, got %d subcommands", len(s.Subcommands))
	}
}

func TestBuildSubPath(t *testing.T) {
	s, err := Build(testRoot(), "sessions list")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if s.Use != "list" {
		t.Fatalf("unexpected command: %s", s.Use)
	}

	s, err = Build(testRoot(), "sessions ls")
	if err != nil || s.Use != "list" {
		t.Fatalf("alias lookup failed: %+v %v", s, err)
	}
}

func TestBuildFlags(t *testing.T) {
	s, err := Build(testRoot(), "send")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(s.Flags) != 2 {
		t.Fatalf("expected 2 flags, got %d", len(s.Flags))
	}
}

func TestBuildUnknownPath(t *testing.T) {
	if _, err := Build(testRoot(), "nope"); err == nil {
		t.Fatal("unknown path should fail")
	}
}
