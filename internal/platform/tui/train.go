package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockdude-evo/internal/core"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude"
	"github.com/vovakirdan/blockdude-evo/internal/replay"
	"github.com/vovakirdan/blockdude-evo/internal/storage"
	"github.com/vovakirdan/blockdude-evo/internal/trainer"
)

// dotsPeriod is how often the "Simulating" text changes.
const dotsPeriod = 500 * time.Millisecond

// TrainingOptions wires a started scheduler into the training screen.
type TrainingOptions struct {
	Scheduler    *trainer.Scheduler
	MapID        string
	TargetFPS    int
	BudgetMargin time.Duration
	MinBudget    time.Duration

	// SaveReplay writes best under name in the replays directory.
	SaveReplay func(name string, best trainer.Genome) (*replay.Record, error)
	// Finish is called once with the winner when the run is over. The
	// returned record is shown in a showcase.
	Finish func(winner trainer.Genome) (*replay.Record, error)

	Showcase blockdude.ShowcaseOptions
}

// TrainModel time-slices training inside the frame loop.
type TrainModel struct {
	opts     TrainingOptions
	store    *storage.Store
	config   core.RuntimeConfig
	spinner  spinner.Model
	progress progress.Model

	dots     int
	lastDots time.Time
	status   string
	slice    trainer.SliceStats
	err      error
	finished bool
	quitting bool
	showcase *GameModel
}

var (
	trainTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	trainTextStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	trainInfoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	trainErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// NewTrainModel creates the training screen. The scheduler must already
// be running.
func NewTrainModel(opts TrainingOptions, store *storage.Store, cfg core.RuntimeConfig) TrainModel {
	if opts.TargetFPS <= 0 {
		opts.TargetFPS = trainer.DefaultTargetFPS
	}
	if opts.MinBudget <= 0 {
		opts.MinBudget = trainer.DefaultMinBudget
	}
	return TrainModel{
		opts:     opts,
		store:    store,
		config:   cfg,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressWidth(cfg.ScreenW))),
		dots:     2,
	}
}

func progressWidth(screenW int) int {
	return core.Clamp(screenW-10, 10, 60)
}

// Init starts the spinner and the frame loop.
func (m TrainModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd(m.opts.TargetFPS))
}

// Update handles messages.
func (m TrainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showcase != nil {
		return m.updateShowcase(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "s":
			m.saveFailure()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.progress.Width = progressWidth(msg.Width)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		return m.frame(time.Time(msg))
	}
	return m, nil
}

// frame runs one training slice within the frame budget.
func (m TrainModel) frame(start time.Time) (tea.Model, tea.Cmd) {
	if m.finished {
		return m, nil
	}
	if start.Sub(m.lastDots) >= dotsPeriod {
		m.lastDots = start
		m.dots = 5 - m.dots // toggles 2 and 3
	}

	sched := m.opts.Scheduler
	budget := trainer.FrameBudget(start, time.Now(), m.opts.TargetFPS, m.opts.BudgetMargin, m.opts.MinBudget)
	stats, err := sched.RunFor(budget)
	m.slice = stats
	if err != nil {
		m.err = err
		m.finished = true
		return m, nil
	}
	if !sched.IsOver() {
		return m, tickCmd(m.opts.TargetFPS)
	}

	m.finished = true
	winner := sched.EndRun()
	if m.opts.Finish == nil {
		return m, tea.Quit
	}
	rec, err := m.opts.Finish(winner)
	if err != nil {
		m.err = err
		return m, nil
	}
	if rec == nil {
		return m, tea.Quit
	}
	gm := NewGameModel(blockdude.NewShowcase(rec, m.opts.Showcase), m.store, m.config)
	gm.standalone = true
	m.showcase = &gm
	return m, gm.Init()
}

func (m *TrainModel) saveFailure() {
	best := m.opts.Scheduler.CurrentBest()
	if best == nil {
		m.status = "No genome has finished a generation yet"
		return
	}
	if m.opts.SaveReplay == nil {
		return
	}
	if _, err := m.opts.SaveReplay(replay.FailureName, best); err != nil {
		m.status = "Save failed: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("Saved genome %d (fitness %.1f) as %q", best.Key(), best.Fitness(), replay.FailureName)
}

func (m TrainModel) updateShowcase(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}
	next, cmd := m.showcase.Update(msg)
	if gm, ok := next.(GameModel); ok {
		m.showcase = &gm
	}
	if m.showcase.IsQuitting() {
		m.quitting = true
	}
	return m, cmd
}

// View renders the training screen.
func (m TrainModel) View() string {
	if m.quitting {
		return ""
	}
	if m.showcase != nil {
		return m.showcase.View()
	}

	sched := m.opts.Scheduler
	var b strings.Builder
	w := m.config.ScreenW

	b.WriteString("\n")
	b.WriteString(centerText(trainTitleStyle.Render("Training on "+m.opts.MapID), w))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(centerText(trainErrStyle.Render("Training stopped: "+m.err.Error()), w))
		if errors.Is(m.err, trainer.ErrCompleteExtinction) {
			b.WriteString("\n")
			b.WriteString(centerText(trainInfoStyle.Render("Enable reset_on_extinction to keep going"), w))
		}
	case m.finished:
		b.WriteString(centerText(trainTextStyle.Render("Done"), w))
	default:
		text := m.spinner.View() + " " + trainTextStyle.Render("Simulating"+strings.Repeat(".", m.dots))
		b.WriteString(centerText(text, w))
	}
	b.WriteString("\n\n")

	done, total := 0, 0
	if ev := sched.Evaluator(); ev != nil {
		done, total = ev.Progress()
	}
	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	b.WriteString(centerText(m.progress.ViewAs(pct), w))
	b.WriteString("\n")
	b.WriteString(centerText(trainInfoStyle.Render(fmt.Sprintf("genome %d/%d", done, total)), w))
	b.WriteString("\n\n")

	left := "Generation " + generationText(sched.CurrentGeneration(), sched.MaxGenerations())
	right := "Best Fitness : " + fitnessText(sched)
	b.WriteString(centerText(trainTextStyle.Render(left)+"    "+trainTextStyle.Render(right), w))
	b.WriteString("\n")
	b.WriteString(centerText(trainInfoStyle.Render(fmt.Sprintf("%d genomes in %s last frame", m.slice.Evaluated, m.slice.Elapsed.Round(time.Millisecond))), w))
	b.WriteString("\n\n")

	if m.status != "" {
		b.WriteString(centerText(trainInfoStyle.Render(m.status), w))
		b.WriteString("\n")
	}
	b.WriteString(centerText(trainInfoStyle.Render("s: save current best  |  esc: exit"), w))
	b.WriteString("\n")
	return b.String()
}

func generationText(current, maxGenerations int) string {
	if maxGenerations <= 0 {
		return fmt.Sprintf("%d", current)
	}
	return fmt.Sprintf("%d/%d", current, maxGenerations)
}

func fitnessText(s *trainer.Scheduler) string {
	if s.CurrentBest() == nil {
		return "None"
	}
	return fmt.Sprintf("%.1f", s.BestFitness())
}

// Err returns the error that stopped training, if any.
func (m TrainModel) Err() error {
	return m.err
}

// RunTraining shows the training screen until the user quits.
func RunTraining(opts TrainingOptions, store *storage.Store, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewTrainModel(opts, store, cfg),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(TrainModel); ok {
		return m.Err()
	}
	return nil
}
