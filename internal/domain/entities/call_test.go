package entities

import (
	"testing"

	"github.com/google/uuid"
)

func TestParticipantMatches(t *testing.T) {
	idA, idB := uuid.New(), uuid.New()

	cases := []struct {
		name string
		a, b Participant
		want bool
	}{
		{"same user id", Participant{UserID: &idA, Name: "Alice"}, Participant{UserID: &idA, Name: "Alice (2)"}, true},
		{"different user ids", Participant{UserID: &idA, Name: "Alice"}, Participant{UserID: &idB, Name: "Alice"}, false},
		{"anonymous same name", Participant{Name: "Guest"}, Participant{Name: "Guest"}, true},
		{"anonymous different name", Participant{Name: "Guest"}, Participant{Name: "Other"}, false},
		{"one id one anonymous falls back to name", Participant{UserID: &idA, Name: "Alice"}, Participant{Name: "Alice"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Matches(tc.b); got != tc.want {
				t.Fatalf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCallHasParticipant(t *testing.T) {
	id := uuid.New()
	call := NewCall("room-1", Participant{UserID: &id, Name: "Alice"})

	if !call.HasParticipant(Participant{UserID: &id, Name: "renamed"}) {
		t.Fatal("participant with same user id not recognized")
	}
	if call.HasParticipant(Participant{Name: "Bob"}) {
		t.Fatal("unknown participant reported as present")
	}
}
