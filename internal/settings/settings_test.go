package settings

import (
	"errors"
	"testing"

	"github.com/starford/mathlinks/internal/apperr"
	"github.com/starford/mathlinks/internal/events"
	"github.com/starford/mathlinks/internal/exclusion"
	"github.com/starford/mathlinks/internal/template"
)

func TestStore_UpdatePublishesRefresh(t *testing.T) {
	bus := events.NewBus()
	var kinds []string
	bus.Subscribe(func(ev events.Event) { kinds = append(kinds, ev.Kind) })

	st, err := NewStore(Default(), bus)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	next := Default()
	next.PrefixBlockLinksWithFilename = true
	if err := st.Update(next); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !st.Current().PrefixBlockLinksWithFilename {
		t.Error("update not applied")
	}
	if len(kinds) != 1 || kinds[0] != events.LabelsRefresh {
		t.Errorf("events = %v", kinds)
	}
}

func TestStore_RejectsInvalid(t *testing.T) {
	st, _ := NewStore(Default(), nil)
	bad := Default()
	bad.Templates = []template.Template{{Title: "a", Replaced: "x"}, {Title: "a", Replaced: "y"}}

	err := st.Update(bad)
	if !errors.Is(err, apperr.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
	if !errors.Is(err, template.ErrDuplicateTitle) {
		t.Errorf("err = %v, want ErrDuplicateTitle", err)
	}
	if len(st.Current().Templates) != 0 {
		t.Error("invalid settings must not be stored")
	}
}

func TestStore_RejectsEmptyExclusion(t *testing.T) {
	bad := Default()
	bad.Exclusions = []exclusion.Entry{{Path: ""}}
	if _, err := NewStore(bad, nil); err == nil {
		t.Error("expected validation error")
	}
}

func TestStore_CurrentIsCopy(t *testing.T) {
	initial := Default()
	initial.Exclusions = []exclusion.Entry{{Path: "Archive"}}
	st, _ := NewStore(initial, nil)

	cur := st.Current()
	cur.Exclusions[0].Path = "Other"

	if got := st.Current().Exclusions[0].Path; got != "Archive" {
		t.Errorf("got = %q, want %q", got, "Archive")
	}
	if !st.Current().IsExcluded("Archive/a.md") {
		t.Error("Archive/a.md should be excluded")
	}
}
