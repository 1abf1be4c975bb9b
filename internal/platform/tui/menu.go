package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockdude-evo/internal/core"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels"
	"github.com/vovakirdan/blockdude-evo/internal/replay"
)

// ItemKind says what selecting a menu item does.
type ItemKind int

const (
	ItemPlay    ItemKind = iota // Play a map by hand
	ItemWatch                   // Watch a saved replay
	ItemRecords                 // Open the records screen
)

// MenuItem is one selectable menu entry.
type MenuItem struct {
	Kind  ItemKind
	ID    string // map ID or replay name
	Title string
	Path  string // map or replay file
}

// BuildMenuItems lists the maps of loader, then the replays in
// replaysDir, then the records entry.
func BuildMenuItems(loader *levels.Loader, replaysDir string) ([]MenuItem, error) {
	var items []MenuItem

	lvls, err := loader.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, lvl := range lvls {
		items = append(items, MenuItem{
			Kind:  ItemPlay,
			ID:    lvl.ID,
			Title: lvl.Title(),
			Path:  lvl.FilePath,
		})
	}

	infos, err := replay.List(replaysDir)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		items = append(items, MenuItem{
			Kind:  ItemWatch,
			ID:    info.Name,
			Title: fmt.Sprintf("Watch %s (%s)", info.Name, info.ModTime.Format("Jan 02 15:04")),
			Path:  info.Path,
		})
	}

	items = append(items, MenuItem{Kind: ItemRecords, ID: "records", Title: "Records"})
	return items, nil
}

var (
	menuTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuSectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Underline(true)
	menuCursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	menuFooterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// MenuModel is the Bubble Tea model for the map and replay picker.
type MenuModel struct {
	items       []MenuItem
	cursor      int
	width       int
	height      int
	config      core.RuntimeConfig
	keyMapper   *KeyMapper
	quitting    bool
	selected    *MenuItem
	openRecords bool
}

// NewMenuModel creates a new menu model.
func NewMenuModel(items []MenuItem, cfg core.RuntimeConfig) MenuModel {
	return MenuModel{
		items:     items,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) == 0 {
			return m, nil
		}
		selected := m.items[m.cursor]
		if selected.Kind == ItemRecords {
			m.openRecords = true
		} else {
			m.selected = &selected
		}
		return m, tea.Quit

	case MenuActionRecords:
		m.openRecords = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render("  B L O C K   D U D E  "), m.width))
	b.WriteString("\n\n")

	kind := ItemKind(-1)
	for i, item := range m.items {
		if item.Kind != kind {
			kind = item.Kind
			if header := sectionTitle(kind); header != "" {
				if i > 0 {
					b.WriteString("\n")
				}
				b.WriteString(centerText(menuSectionStyle.Render(header), m.width))
				b.WriteString("\n")
			} else {
				b.WriteString("\n")
			}
		}

		line := "  " + item.Title
		if i == m.cursor {
			line = menuCursorStyle.Render("> " + item.Title)
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	if len(m.items) == 0 {
		b.WriteString(centerText("No maps found", m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Tab: Records  |  Q: Quit"
	b.WriteString(centerText(menuFooterStyle.Render(controls), m.width))
	b.WriteString("\n")
	return b.String()
}

func sectionTitle(k ItemKind) string {
	switch k {
	case ItemPlay:
		return "Maps"
	case ItemWatch:
		return "Replays"
	}
	return ""
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsRecords returns true if user asked for the records screen.
func (m MenuModel) WantsRecords() bool {
	return m.openRecords
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	Item         *MenuItem
	Config       core.RuntimeConfig
	WantsRecords bool
	Quit         bool
}

// RunMenu runs the menu and returns the selection result.
func RunMenu(items []MenuItem, cfg core.RuntimeConfig) (MenuResult, error) {
	p := tea.NewProgram(
		NewMenuModel(items, cfg),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Quit: true}, nil
	}

	result := MenuResult{Config: m.Config()}
	switch {
	case m.WantsRecords():
		result.WantsRecords = true
	case m.Selected() != nil:
		result.Item = m.Selected()
	default:
		result.Quit = true
	}
	return result, nil
}
