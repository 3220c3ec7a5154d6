package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jakoblorz/npm-clean/internal/logger"
	"github.com/jakoblorz/npm-clean/internal/models"
)

const maxBarWidth = 60

// targetDoneMsg reports one processed target to the progress model.
type targetDoneMsg struct {
	outcome models.TargetOutcome
}

// finishMsg stops the progress program.
type finishMsg struct{}

// ProgressModel renders a progress bar over the eligible targets of a run.
type ProgressModel struct {
	bar     progress.Model
	total   int
	done    int
	failed  int
	freed   int64
	current string
	dryRun  bool
	quit    bool
}

// NewProgressModel creates a progress model for total targets.
func NewProgressModel(total int, dryRun bool) ProgressModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	return ProgressModel{
		bar:    bar,
		total:  total,
		dryRun: dryRun,
	}
}

// Init initializes the model
func (m ProgressModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case targetDoneMsg:
		m.done++
		if msg.outcome.State == models.StateFailed {
			m.failed++
		}
		m.freed += msg.outcome.Freed()
		m.current = msg.outcome.Target.Path
		return m, nil
	case finishMsg:
		m.quit = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
		if m.bar.Width > maxBarWidth {
			m.bar.Width = maxBarWidth
		}
		return m, nil
	}
	return m, nil
}

// Percent returns the completed fraction.
func (m ProgressModel) Percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

// View renders the model
func (m ProgressModel) View() string {
	verb := "Cleaning"
	if m.dryRun {
		verb = "Simulating"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %d/%d  %s freed",
		verb, m.bar.ViewAs(m.Percent()), m.done, m.total, FormatBytes(m.freed))
	if m.failed > 0 {
		b.WriteString("  " + ErrorStyle.Render(fmt.Sprintf("%d failed", m.failed)))
	}
	b.WriteString("\n")
	if !m.quit && m.current != "" {
		b.WriteString(SubtleStyle.Render("  " + m.current))
		b.WriteString("\n")
	}
	return b.String()
}

// BarProgress drives a ProgressModel in a bubbletea program. Advance may be
// called from several goroutines.
type BarProgress struct {
	out     io.Writer
	dryRun  bool
	program *tea.Program
	done    chan struct{}
}

// NewBarProgress creates a progress bar that renders to out.
func NewBarProgress(out io.Writer, dryRun bool) *BarProgress {
	return &BarProgress{out: out, dryRun: dryRun}
}

// Start launches the progress program.
func (p *BarProgress) Start(total int) {
	p.program = tea.NewProgram(
		NewProgressModel(total, p.dryRun),
		tea.WithInput(nil),
		tea.WithOutput(p.out),
		tea.WithoutSignalHandler(),
	)
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		_, _ = p.program.Run()
	}()
}

// Advance records a processed target.
func (p *BarProgress) Advance(outcome models.TargetOutcome) {
	if p.program != nil {
		p.program.Send(targetDoneMsg{outcome: outcome})
	}
}

// Finish stops the program and waits for the final frame.
func (p *BarProgress) Finish() {
	if p.program == nil {
		return
	}
	p.program.Send(finishMsg{})
	<-p.done
	p.program = nil
}

// LogProgress reports progress as log lines, for non-terminal output.
type LogProgress struct {
	log   logger.Logger
	mu    sync.Mutex
	total int
	done  int
}

// NewLogProgress creates a progress sink that logs every processed target.
func NewLogProgress(log logger.Logger) *LogProgress {
	if log == nil {
		log = logger.Nop()
	}
	return &LogProgress{log: log}
}

func (p *LogProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.done = 0
}

func (p *LogProgress) Advance(outcome models.TargetOutcome) {
	p.mu.Lock()
	p.done++
	done, total := p.done, p.total
	p.mu.Unlock()

	p.log.LogInfo(fmt.Sprintf("[%d/%d] %s %s", done, total, outcome.State, outcome.Target.Path))
}

func (p *LogProgress) Finish() {}

// Progress receives the processed targets of a cleaning run. Advance is
// called from worker goroutines.
type Progress interface {
	Start(total int)
	Advance(outcome models.TargetOutcome)
	Finish()
}

// NewProgress picks a progress bar for terminals and log lines otherwise.
func NewProgress(out io.Writer, dryRun bool, log logger.Logger) Progress {
	if IsTerminal(out) {
		return NewBarProgress(out, dryRun)
	}
	return NewLogProgress(log)
}
