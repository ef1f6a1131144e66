package events

import "testing"

func TestBus_PublishOrder(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe(func(ev Event) { got = append(got, "a:"+ev.Path) })
	b.Subscribe(func(ev Event) { got = append(got, "b:"+ev.Path) })

	b.Publish(Event{Kind: LabelsUpdated, Path: "x.md"})

	if len(got) != 2 || got[0] != "a:x.md" || got[1] != "b:x.md" {
		t.Errorf("got = %v", got)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	n := 0
	unsub := b.Subscribe(func(Event) { n++ })
	b.Publish(Event{Kind: LabelsRefresh})
	unsub()
	unsub()
	b.Publish(Event{Kind: LabelsRefresh})

	if n != 1 {
		t.Errorf("handler called %d times, want 1", n)
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d, want 0", b.Len())
	}
}

func TestBus_ReentrantPublish(t *testing.T) {
	b := NewBus()
	var kinds []string
	b.Subscribe(func(ev Event) {
		kinds = append(kinds, ev.Kind)
		if ev.Kind == AccountDeleted {
			b.Publish(Event{Kind: LabelsRefresh})
		}
	})
	b.Publish(Event{Kind: AccountDeleted, ID: "1"})

	if len(kinds) != 2 || kinds[1] != LabelsRefresh {
		t.Errorf("kinds = %v", kinds)
	}
}
