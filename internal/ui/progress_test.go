package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"lintel/internal/driver"
)

func feed(m tea.Model, events ...driver.Event) tea.Model {
	for _, ev := range events {
		m, _ = m.Update(eventMsg(ev))
	}
	return m
}

func TestProgressModelCounts(t *testing.T) {
	files := []string{"a.rb", "b.rb", "c.rb"}
	m := NewProgressModel("lintel", files, nil)
	m = feed(m,
		driver.Event{File: "a.rb", Stage: driver.StageParse, Status: driver.StatusWorking},
		driver.Event{File: "a.rb", Stage: driver.StageAnalyze, Status: driver.StatusDone, Offenses: 2},
		driver.Event{File: "b.rb", Stage: driver.StageAnalyze, Status: driver.StatusCached, Offenses: 1},
		driver.Event{File: "c.rb", Stage: driver.StageParse, Status: driver.StatusWorking},
		driver.Event{File: "unknown.rb", Stage: driver.StageParse, Status: driver.StatusWorking},
	)

	pm := m.(*progressModel)
	if pm.finished != 2 || pm.cached != 1 || pm.offenses != 3 {
		t.Errorf("finished=%d cached=%d offenses=%d", pm.finished, pm.cached, pm.offenses)
	}
	view := m.View()
	for _, want := range []string{"2/3 files", "3 offenses", "1 cached", "parsing", "c.rb"} {
		if !strings.Contains(view, want) {
			t.Errorf("view misses %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "a.rb") {
		t.Errorf("finished file still listed:\n%s", view)
	}
}

func TestProgressModelIgnoresEventsAfterFinish(t *testing.T) {
	m := NewProgressModel("lintel", []string{"a.rb"}, nil)
	m = feed(m,
		driver.Event{File: "a.rb", Stage: driver.StageAnalyze, Status: driver.StatusDone, Offenses: 1},
		driver.Event{File: "a.rb", Stage: driver.StageAnalyze, Status: driver.StatusDone, Offenses: 1},
	)
	if pm := m.(*progressModel); pm.finished != 1 || pm.offenses != 1 {
		t.Errorf("duplicate finish counted: %+v", pm)
	}
}

func TestProgressModelErrorsAndDone(t *testing.T) {
	m := NewProgressModel("lintel", []string{"a.rb"}, nil)
	m = feed(m, driver.Event{File: "a.rb", Stage: driver.StageLoad, Status: driver.StatusError, Err: errors.New("boom")})
	if !strings.Contains(m.View(), "1 failed") {
		t.Errorf("view misses failure:\n%s", m.View())
	}

	m, cmd := m.Update(doneMsg{})
	if cmd == nil {
		t.Fatal("doneMsg must quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("doneMsg command is not tea.Quit")
	}
	if !strings.Contains(m.View(), "done:") {
		t.Errorf("final view:\n%s", m.View())
	}
}

func TestListenForEventClosedChannel(t *testing.T) {
	ch := make(chan driver.Event)
	close(ch)
	m := NewProgressModel("lintel", []string{"a.rb"}, ch).(*progressModel)
	if _, ok := m.listenForEvent()().(doneMsg); !ok {
		t.Error("closed channel must produce doneMsg")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("app/models/user.rb", 10); got != "app/mod..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a.rb", 10); got != "a.rb" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("app/models/user.rb", 3); got != "app" {
		t.Errorf("truncate narrow = %q", got)
	}
	for _, width := range []int{4, 10, 17} {
		if got := runewidth.StringWidth(truncate("app/models/user.rb", width)); got != width {
			t.Errorf("truncate to %d gives width %d", width, got)
		}
	}
}
