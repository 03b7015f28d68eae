package auth

import (
	"testing"
)

func TestBrokerDeliversCurrentSessionOnSubscribe(t *testing.T) {
	b := NewSessionBroker()
	b.Publish(&Session{UserID: "u1", Email: "a@b.c"})

	var got *Session
	cancel := b.Subscribe(func(s *Session) { got = s })
	defer cancel()

	if got == nil || got.UserID != "u1" {
		t.Errorf("initial delivery = %+v", got)
	}
}

func TestBrokerNotifiesAllSubscribers(t *testing.T) {
	b := NewSessionBroker()

	var first, second *Session
	cancelA := b.Subscribe(func(s *Session) { first = s })
	cancelB := b.Subscribe(func(s *Session) { second = s })
	defer cancelA()
	defer cancelB()

	b.Publish(&Session{UserID: "u2", Email: "x@y.z"})
	if first == nil || second == nil || first.UserID != "u2" || second.UserID != "u2" {
		t.Errorf("first = %+v, second = %+v", first, second)
	}
}

func TestBrokerUnsubscribeStopsDelivery(t *testing.T) {
	b := NewSessionBroker()

	var calls int
	cancel := b.Subscribe(func(*Session) { calls++ })
	cancel()

	b.Publish(&Session{UserID: "u3"})
	if calls != 1 {
		t.Errorf("calls = %d, only the initial delivery expected", calls)
	}
}

func TestBrokerNilSessionMeansSignedOut(t *testing.T) {
	b := NewSessionBroker()
	b.Publish(&Session{UserID: "u1"})
	b.Publish(nil)

	if b.Current() != nil {
		t.Error("current session should be nil after sign-out")
	}
}

func TestBrokersAreIndependent(t *testing.T) {
	a := NewSessionBroker()
	b := NewSessionBroker()

	a.Publish(&Session{UserID: "only-a"})
	if b.Current() != nil {
		t.Error("publishing on one broker leaked into another")
	}
}
