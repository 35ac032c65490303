// Package tui provides the Bubble Tea hymnal interface.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hymnal/internal/model"
	"hymnal/internal/search"
	statsPkg "hymnal/internal/stats"
	"hymnal/internal/userstate"
)

const (
	tabAll = iota
	tabFavorites
	tabRecent
)

const (
	modeBrowse = iota
	modeDetail
	modePresent
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	favoriteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	verseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
)

// Model implements the Bubble Tea hymnal UI.
type Model struct {
	engine *search.Engine
	state  *userstate.Store
	cfg    model.BrowseConfig

	mode      int
	tabs      []string
	activeTab int

	searchInput textinput.Model
	searching   bool
	hymnTable   table.Model
	listing     []model.Hymn

	detail   model.Hymn
	viewport viewport.Model

	presentVerses []string
	presentIndex  int

	warnMsg string

	width  int
	height int
}

// NewModel constructs the hymnal browse model.
func NewModel(engine *search.Engine, state *userstate.Store, cfg model.BrowseConfig) *Model {
	input := textinput.New()
	input.Prompt = "Search: "
	input.Placeholder = "title, lyrics, author, or number"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)

	m := &Model{
		engine:      engine,
		state:       state,
		cfg:         cfg,
		tabs:        []string{"All", "Favorites", "Recent"},
		searchInput: input,
		viewport:    viewport.New(0, 0),
	}
	m.refreshListing()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modePresent:
			return m.updatePresent(msg)
		case modeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.Type {
		case tea.KeyEsc:
			m.searching = false
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			m.refreshListing()
			return m, nil
		case tea.KeyEnter:
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.refreshListing()
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.searching = true
		m.activeTab = tabAll
		m.refreshListing()
		return m, m.searchInput.Focus()
	case "left", "h":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "right", "l":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "f":
		m.toggleSelectedFavorite()
		return m, nil
	case "enter":
		m.openSelected()
		return m, nil
	case "g", "home":
		m.hymnTable.GotoTop()
		return m, nil
	case "G", "end":
		m.hymnTable.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.hymnTable, cmd = m.hymnTable.Update(msg)
	return m, cmd
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.mode = modeBrowse
		m.refreshListing()
		return m, tea.ClearScreen
	case "f":
		m.toggleFavorite(m.detail.Number)
		m.renderDetail()
		return m, nil
	case "p":
		m.startPresentation()
		return m, tea.ClearScreen
	case "g", "home":
		m.viewport.GotoTop()
		return m, nil
	case "G", "end":
		m.viewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) updatePresent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.mode = modeDetail
		return m, tea.ClearScreen
	case "left", "h", "k", "up":
		if m.presentIndex > 0 {
			m.presentIndex--
		}
		return m, nil
	case "right", "l", "j", "down", " ", "enter":
		if m.presentIndex < len(m.presentVerses)-1 {
			m.presentIndex++
		}
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	switch m.mode {
	case modePresent:
		return m.viewPresent()
	case modeDetail:
		return m.viewDetail()
	default:
		return m.viewBrowse()
	}
}

func (m *Model) viewBrowse() string {
	header := m.renderTabs() + "\n" + m.searchInput.View()
	footer := m.renderFooter()
	body := m.hymnTable.View()
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) viewDetail() string {
	h := m.detail
	marker := ""
	if m.state.IsFavorite(h.Number) {
		marker = " " + favoriteStyle.Render("♥")
	}
	header := titleStyle.Render(fmt.Sprintf("%d. %s", h.Number, h.Title)) + marker
	meta := renderMeta(h)
	if meta != "" {
		header += "\n" + metaStyle.Render(meta)
	}
	footer := m.renderFooter()
	return strings.Join([]string{header, m.viewport.View(), footer}, "\n")
}

func (m *Model) viewPresent() string {
	if len(m.presentVerses) == 0 {
		return ""
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	verse := verseStyle.Render(statsPkg.WrapText(m.presentVerses[m.presentIndex], contentWidth))
	counter := metaStyle.Render(fmt.Sprintf("%d / %d", m.presentIndex+1, len(m.presentVerses)))
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, verse)
	counterLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, counter)
	return body + "\n" + counterLine
}

func (m *Model) renderTabs() string {
	rendered := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			rendered = append(rendered, activeNavStyle.Render(tab))
		} else {
			rendered = append(rendered, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) renderFooter() string {
	var segments []string
	switch m.mode {
	case modeDetail:
		segments = append(segments, "f favorite · p present · esc back")
	case modePresent:
		segments = append(segments, "←/→ verses · esc back")
	default:
		segments = append(segments, fmt.Sprintf("%d hymns", len(m.listing)))
		segments = append(segments, "/ search · enter open · f favorite · q quit")
	}
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.warnMsg != "" {
		footer += "  " + warnStyle.Render(m.warnMsg)
	}
	return footer
}

func renderMeta(h model.Hymn) string {
	var parts []string
	if h.Author != "" {
		parts = append(parts, "Words: "+h.Author)
	}
	if h.Composer != "" {
		parts = append(parts, "Music: "+h.Composer)
	}
	if h.Category != "" {
		parts = append(parts, h.Category)
	}
	return strings.Join(parts, "  ·  ")
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.refreshListing()
}

// refreshListing recomputes the table rows from the active tab and the
// search input. A numeric query jumps straight to that hymn number.
func (m *Model) refreshListing() {
	query := strings.TrimSpace(m.searchInput.Value())
	switch {
	case query != "":
		if n, err := strconv.Atoi(query); err == nil {
			if h, err := m.engine.ByNumber(n); err == nil {
				m.listing = []model.Hymn{h}
			} else {
				m.listing = nil
			}
			break
		}
		matches := m.engine.Search(query)
		m.listing = make([]model.Hymn, 0, len(matches))
		for _, match := range matches {
			m.listing = append(m.listing, match.Hymn)
		}
	case m.activeTab == tabFavorites:
		m.listing = m.hymnsByNumbers(m.state.Favorites())
	case m.activeTab == tabRecent:
		m.listing = m.hymnsByNumbers(m.state.Recent())
	default:
		m.listing = m.filterByCategory(m.engine.All())
	}
	m.rebuildTable()
}

func (m *Model) hymnsByNumbers(numbers []int) []model.Hymn {
	out := make([]model.Hymn, 0, len(numbers))
	for _, n := range numbers {
		h, err := m.engine.ByNumber(n)
		if err != nil {
			continue
		}
		out = append(out, h)
	}
	return out
}

func (m *Model) filterByCategory(hymns []model.Hymn) []model.Hymn {
	if m.cfg.Category == "" {
		return hymns
	}
	out := make([]model.Hymn, 0, len(hymns))
	for _, h := range hymns {
		if h.Category == m.cfg.Category {
			out = append(out, h)
		}
	}
	return out
}

func (m *Model) rebuildTable() {
	titleWidth := m.width - 28
	if titleWidth < 20 {
		titleWidth = 20
	}
	columns := []table.Column{
		{Title: "No.", Width: 5},
		{Title: "Title", Width: titleWidth},
		{Title: "Category", Width: 18},
		{Title: "♥", Width: 2},
	}
	rows := make([]table.Row, 0, len(m.listing))
	for _, h := range m.listing {
		marker := ""
		if m.state.IsFavorite(h.Number) {
			marker = "♥"
		}
		rows = append(rows, table.Row{
			strconv.Itoa(h.Number),
			h.Title,
			h.Category,
			marker,
		})
	}
	selected := m.hymnTable.Cursor()
	m.hymnTable = table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(m.tableHeight()),
		table.WithFocused(true),
	)
	m.hymnTable.SetStyles(hymnTableStyles())
	if selected < len(rows) {
		m.hymnTable.SetCursor(selected)
	}
}

func hymnTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Foreground(lipgloss.Color("#8C8C8C")).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color("#4A4A4A"))
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#3A3A3A")).
		Bold(false)
	return styles
}

func (m *Model) tableHeight() int {
	// Tabs, search line, and footer surround the table.
	height := m.height - lipgloss.Height(m.renderTabs()) - 2
	if height < 1 {
		height = 1
	}
	return height
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.searchInput.Width = maxInt(10, m.width-lipgloss.Width(m.searchInput.Prompt)-2)
	m.viewport.Width = m.width
	m.viewport.Height = maxInt(1, m.height-3)
	m.rebuildTable()
	if m.mode == modeDetail {
		m.renderDetail()
	}
}

func (m *Model) selectedHymn() (model.Hymn, bool) {
	idx := m.hymnTable.Cursor()
	if idx < 0 || idx >= len(m.listing) {
		return model.Hymn{}, false
	}
	return m.listing[idx], true
}

func (m *Model) openSelected() {
	h, ok := m.selectedHymn()
	if !ok {
		return
	}
	if err := m.state.RecordView(h.Number); err != nil {
		m.warn(err)
	}
	m.detail = h
	m.mode = modeDetail
	m.renderDetail()
	m.viewport.GotoTop()
}

func (m *Model) renderDetail() {
	contentWidth := m.viewport.Width - 2
	if contentWidth < 1 {
		contentWidth = 1
	}
	m.viewport.SetContent(statsPkg.WrapText(m.detail.FullText(), contentWidth))
}

func (m *Model) startPresentation() {
	verses := append([]string(nil), m.detail.Verses...)
	if m.detail.Chorus != "" {
		// Interleave the chorus after each verse, the way it is sung.
		interleaved := make([]string, 0, len(verses)*2)
		for _, verse := range verses {
			interleaved = append(interleaved, verse, m.detail.Chorus)
		}
		verses = interleaved
	}
	m.presentVerses = verses
	m.presentIndex = 0
	m.mode = modePresent
}

func (m *Model) toggleSelectedFavorite() {
	h, ok := m.selectedHymn()
	if !ok {
		return
	}
	m.toggleFavorite(h.Number)
	m.refreshListing()
}

func (m *Model) toggleFavorite(n int) {
	if _, err := m.state.ToggleFavorite(n); err != nil {
		m.warn(err)
	}
}

// warn surfaces a non-fatal error in the footer. Persistence failures
// degrade gracefully: the in-memory state keeps working.
func (m *Model) warn(err error) {
	var perr *userstate.PersistenceError
	if errors.As(err, &perr) {
		m.warnMsg = "favorites could not be saved; changes kept in memory"
		return
	}
	m.warnMsg = err.Error()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
