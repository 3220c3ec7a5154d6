package tui

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jakoblorz/npm-clean/internal/logger"
	"github.com/jakoblorz/npm-clean/internal/models"
	"github.com/stretchr/testify/require"
)

func outcome(path string, state models.TargetState, size int64) models.TargetOutcome {
	return models.TargetOutcome{
		Target: models.NewCleanTarget(path, models.TargetBuildDir).WithSize(size),
		State:  state,
	}
}

func TestProgressModel_Update(t *testing.T) {
	var m tea.Model = NewProgressModel(3, false)

	m, _ = m.Update(targetDoneMsg{outcome: outcome("/ws/a/dist", models.StateCleaned, 1000)})
	m, _ = m.Update(targetDoneMsg{outcome: outcome("/ws/b/dist", models.StateFailed, 500)})

	pm := m.(ProgressModel)
	require.InDelta(t, 2.0/3.0, pm.Percent(), 0.0001)

	view := pm.View()
	require.Contains(t, view, "Cleaning")
	require.Contains(t, view, "2/3")
	require.Contains(t, view, "1.0 kB freed")
	require.Contains(t, view, "1 failed")
	require.Contains(t, view, "/ws/b/dist")

	m, cmd := m.Update(finishMsg{})
	require.NotNil(t, cmd)
	require.NotContains(t, m.View(), "/ws/b/dist")
}

func TestProgressModel_WindowSize(t *testing.T) {
	var m tea.Model = NewProgressModel(1, true)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 200, Height: 40})
	require.Equal(t, maxBarWidth, m.(ProgressModel).bar.Width)

	m, _ = m.Update(tea.WindowSizeMsg{Width: 30, Height: 40})
	require.Equal(t, 26, m.(ProgressModel).bar.Width)
	require.Contains(t, m.View(), "Simulating")
}

func TestProgressModel_EmptyRunIsComplete(t *testing.T) {
	require.Equal(t, 1.0, NewProgressModel(0, false).Percent())
}

func TestLogProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewLogProgress(logger.NewConsoleLogger(buf, "info"))

	p.Start(4)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Advance(outcome("/ws/app/dist", models.StateSimulated, 1))
		}()
	}
	wg.Wait()
	p.Finish()

	out := buf.String()
	require.Equal(t, 4, strings.Count(out, "simulated /ws/app/dist"))
	require.Contains(t, out, "[4/4]")
}

func TestNewProgress_NonTerminal(t *testing.T) {
	p := NewProgress(&bytes.Buffer{}, false, nil)
	_, ok := p.(*LogProgress)
	require.True(t, ok)
}

func TestBarProgress_RunsToCompletion(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewBarProgress(buf, false)

	p.Start(2)
	p.Advance(outcome("/ws/a/dist", models.StateCleaned, 10))
	p.Advance(outcome("/ws/b/dist", models.StateCleaned, 10))
	p.Finish()

	require.Contains(t, buf.String(), "2/2")
}
