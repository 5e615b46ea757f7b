package settings

import "testing"

func TestOnChangeFireImmediately(t *testing.T) {
	s := NewSettings(WithValue(KeyShadows, "medium"))

	var got []string
	s.OnChange(KeyShadows, func(_, value string) {
		got = append(got, value)
	}, true)

	if len(got) != 1 || got[0] != "medium" {
		t.Fatalf("expected one immediate call with medium, got %v", got)
	}
}

func TestOnChangeWithoutImmediateFire(t *testing.T) {
	s := NewSettings(WithValue(KeyShadows, "low"))

	calls := 0
	s.OnChange(KeyShadows, func(_, _ string) { calls++ }, false)
	if calls != 0 {
		t.Fatalf("handler fired %d times before any change", calls)
	}

	s.Set(KeyShadows, "high")
	if calls != 1 {
		t.Fatalf("expected 1 call after Set, got %d", calls)
	}
}

func TestFireImmediatelyOnUnsetKey(t *testing.T) {
	s := NewSettings()

	var value string
	fired := false
	s.OnChange("missing", func(_, v string) {
		fired = true
		value = v
	}, true)

	if !fired || value != "" {
		t.Fatalf("expected immediate call with empty value, fired=%v value=%q", fired, value)
	}
}

func TestSetSameValueDoesNotNotify(t *testing.T) {
	s := NewSettings(WithValue(KeyShadows, "high"))

	calls := 0
	s.OnChange(KeyShadows, func(_, _ string) { calls++ }, false)
	s.Set(KeyShadows, "high")
	if calls != 0 {
		t.Errorf("unchanged Set notified %d times", calls)
	}
}

func TestHandlersRunInSubscriptionOrder(t *testing.T) {
	s := NewSettings()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		s.OnChange(KeyShadows, func(_, _ string) { order = append(order, i) }, false)
	}
	s.Set(KeyShadows, "low")

	for i, v := range order {
		if v != i {
			t.Fatalf("handlers ran out of order: %v", order)
		}
	}
	if len(order) != 3 {
		t.Fatalf("expected 3 handler calls, got %d", len(order))
	}
}

func TestUnsubscribe(t *testing.T) {
	s := NewSettings()

	calls := 0
	sub := s.OnChange(KeyShadows, func(_, _ string) { calls++ }, false)
	if sub.Key() != KeyShadows {
		t.Errorf("subscription key = %q, want %q", sub.Key(), KeyShadows)
	}

	sub.Unsubscribe()
	sub.Unsubscribe()
	s.Set(KeyShadows, "medium")

	if calls != 0 {
		t.Errorf("unsubscribed handler was called %d times", calls)
	}
}

func TestHandlerMayUnsubscribeDuringNotify(t *testing.T) {
	s := NewSettings()

	var sub Subscription
	firstCalls, secondCalls := 0, 0
	sub = s.OnChange(KeyShadows, func(_, _ string) {
		firstCalls++
		sub.Unsubscribe()
	}, false)
	s.OnChange(KeyShadows, func(_, _ string) { secondCalls++ }, false)

	s.Set(KeyShadows, "low")
	s.Set(KeyShadows, "high")

	if firstCalls != 1 {
		t.Errorf("self-unsubscribing handler called %d times, want 1", firstCalls)
	}
	if secondCalls != 2 {
		t.Errorf("second handler called %d times, want 2", secondCalls)
	}
}

func TestGet(t *testing.T) {
	s := NewSettings(WithValues(map[string]string{"a": "1"}))

	if v, ok := s.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
	if _, ok := s.Get("b"); ok {
		t.Error("Get(b) reported a value for an unset key")
	}
}
