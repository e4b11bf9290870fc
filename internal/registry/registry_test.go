package registry

import (
	"strings"
	"testing"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/schedule"
)

type stubDemo struct{ id string }

func (d stubDemo) ID() string          { return d.id }
func (d stubDemo) Title() string       { return strings.ToUpper(d.id) }
func (d stubDemo) Description() string { return "stub " + d.id }

func (d stubDemo) Build(s *schedule.Scheduler, env Env) error { return nil }

func TestRegisterAndCreate(t *testing.T) {
	Register("zz-stub", func() Demo { return stubDemo{id: "zz-stub"} })
	Register("aa-stub", func() Demo { return stubDemo{id: "aa-stub"} })
	defer unregister("zz-stub")
	defer unregister("aa-stub")

	if !Exists("zz-stub") || Exists("missing") {
		t.Error("Exists() does not reflect registrations")
	}

	d, err := Create("zz-stub")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if d.ID() != "zz-stub" {
		t.Errorf("Create() returned demo %q", d.ID())
	}

	if _, err := Create("missing"); err == nil {
		t.Error("Create() of an unknown demo should fail")
	}

	list := List()
	var ids []string
	for _, info := range list {
		ids = append(ids, info.ID)
	}
	joined := strings.Join(ids, ",")
	if strings.Index(joined, "aa-stub") > strings.Index(joined, "zz-stub") {
		t.Errorf("List() not sorted by ID: %v", ids)
	}
	for _, info := range list {
		if info.ID == "aa-stub" && (info.Title != "AA-STUB" || info.Description != "stub aa-stub") {
			t.Errorf("List() metadata = %+v", info)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup-stub", func() Demo { return stubDemo{id: "dup-stub"} })
	defer unregister("dup-stub")

	defer func() {
		if recover() == nil {
			t.Error("Duplicate registration should panic")
		}
	}()
	Register("dup-stub", func() Demo { return stubDemo{id: "dup-stub"} })
}
