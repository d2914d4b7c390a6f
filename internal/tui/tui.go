// Package tui provides a Bubble Tea TUI for previewing review bundles.
package tui

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/postreview/internal/bundle"
	"github.com/fakeyudi/postreview/internal/diff"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	actionAddStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	actionDeleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	actionEditStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	diffAddStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	diffDelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	diffMetaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabSummary tabID = iota
	tabDescription
	tabFiles
	tabPatch
	tabCount
)

var tabNames = [tabCount]string{"Summary", "Description", "Files", "Patch"}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	bundle    *bundle.ReviewBundle
	filename  string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	// Files tab: one entry per reviewable file, with its diff when known
	files         []fileView
	fileCursor    int
	expandedFiles map[int]bool
}

type fileView struct {
	path   string
	action string
	kind   string
	diff   string
}

// New creates a new TUI model for the given bundle and source filename.
func New(b *bundle.ReviewBundle, filename string) Model {
	return Model{
		bundle:        b,
		filename:      filepath.Base(filename),
		files:         buildFiles(b),
		expandedFiles: make(map[int]bool),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4":
			m.activeTab = tabID(msg.String()[0] - '1')
		case "up", "k":
			if m.activeTab == tabFiles && m.fileCursor > 0 {
				m.fileCursor--
				m.rebuildFilesViewport()
				return m, nil
			}
		case "down", "j":
			if m.activeTab == tabFiles && m.fileCursor < len(m.files)-1 {
				m.fileCursor++
				m.rebuildFilesViewport()
				return m, nil
			}
		case "enter", " ":
			if m.activeTab == tabFiles && len(m.files) > 0 {
				if m.files[m.fileCursor].diff != "" {
					if m.expandedFiles[m.fileCursor] {
						delete(m.expandedFiles, m.fileCursor)
					} else {
						m.expandedFiles[m.fileCursor] = true
					}
					m.rebuildFilesViewport()
				}
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  postreview  " + m.filename)

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  1-4 jump  q quit"
	if m.activeTab == tabFiles {
		hint += "  ↑/↓ select  enter expand/collapse"
	}
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(
		hint + strings.Repeat(" ", pad) + pct,
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Model) rebuildFilesViewport() {
	m.viewports[tabFiles].SetContent(m.renderTab(tabFiles))
}

// ── Tab renderers ─────────────────────────────────────────────────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabSummary:
		return m.renderSummary()
	case tabDescription:
		return m.renderDescription()
	case tabFiles:
		return m.renderFiles()
	case tabPatch:
		return m.renderPatch()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func bullet(text string) string {
	return bulletStyle.Render("  •") + "  " + text + "\n"
}

func (m *Model) renderSummary() string {
	b := m.bundle
	var sb strings.Builder
	sb.WriteString(heading("Review Request"))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}
	row("Name:", b.Request.Name)
	row("Project:", b.Request.Project)
	row("Author:", b.Request.Author)
	row("Mode:", string(b.Mode))
	if b.ServerURL != "" {
		row("Server:", b.ServerURL)
	}
	row("Bundle:", b.ID)
	if !b.UpdatedAt.IsZero() {
		row("Updated:", b.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
	}

	sb.WriteString(heading("Change"))
	row("Change:", b.Change.ID)
	row("Source:", b.Change.Source)
	row("Status:", b.Change.Status)
	if b.Change.Client != "" {
		row("Client:", b.Change.Client)
	}
	if !b.Change.Time.IsZero() {
		row("Date:", b.Change.Time.Format("2006-01-02 15:04:05 MST"))
	}
	row("Files:", fmt.Sprintf("%d", len(b.Change.Files)))
	if len(b.Change.Jobs) > 0 {
		sb.WriteString(heading("Jobs"))
		for _, j := range b.Change.Jobs {
			sb.WriteString(bullet(j))
		}
	}
	return sb.String()
}

func (m *Model) renderDescription() string {
	var sb strings.Builder
	sb.WriteString(heading("Description"))
	desc := strings.TrimSpace(m.bundle.Request.Description)
	if desc == "" {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	sb.WriteString(indent(desc, "  ") + "\n")
	return sb.String()
}

func (m *Model) renderFiles() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Files (%d)", len(m.files))))
	if len(m.files) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for i, f := range m.files {
		hasDiff := f.diff != ""
		expanded := m.expandedFiles[i]

		toggle := dimStyle.Render("  ▶ ")
		if expanded {
			toggle = dimStyle.Render("  ▼ ")
		}
		if !hasDiff {
			toggle = "    "
		}

		action := fmt.Sprintf("%-12s", f.action)
		switch {
		case strings.Contains(f.action, "add"), f.action == "branch":
			action = actionAddStyle.Render(action)
		case strings.Contains(f.action, "delete"):
			action = actionDeleteStyle.Render(action)
		default:
			action = actionEditStyle.Render(action)
		}

		row := fmt.Sprintf("%s%s %s  %s", toggle, action, dimStyle.Render(fmt.Sprintf("%-8s", f.kind)), f.path)
		if i == m.fileCursor {
			row = selectedRowStyle.Width(m.width - 2).Render(row)
		}
		sb.WriteString(row + "\n")

		if expanded && hasDiff {
			sb.WriteString(renderDiff(f.diff, m.width))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderPatch() string {
	var sb strings.Builder
	switch m.bundle.Mode {
	case bundle.ModePatch:
		sb.WriteString(heading("Patch"))
		if m.bundle.Patch == "" {
			sb.WriteString(dimStyle.Render("  (empty patch)") + "\n")
			return sb.String()
		}
		sb.WriteString(renderDiff(m.bundle.Patch, m.width))
	case bundle.ModeItems:
		sb.WriteString(heading(fmt.Sprintf("Upload Items (%d)", len(m.bundle.Items))))
		for _, it := range m.bundle.Items {
			sb.WriteString(bullet(fmt.Sprintf("%s  %s", it.Path,
				dimStyle.Render(fmt.Sprintf("%d → %d bytes", len(it.Old), len(it.New))))))
		}
	case bundle.ModeRevision:
		sb.WriteString(heading("Revision"))
		sb.WriteString("  Review of submitted change " + m.bundle.Revision + "\n")
	}
	return sb.String()
}

// renderDiff colorises a unified diff string.
func renderDiff(patch string, width int) string {
	var sb strings.Builder
	border := dimStyle.Render("  " + strings.Repeat("─", max(width-4, 1)))
	sb.WriteString(border + "\n")
	for _, line := range strings.Split(patch, "\n") {
		var rendered string
		switch {
		case strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---"):
			rendered = diffMetaStyle.Render("  " + line)
		case strings.HasPrefix(line, "+"):
			rendered = diffAddStyle.Render("  " + line)
		case strings.HasPrefix(line, "-"):
			rendered = diffDelStyle.Render("  " + line)
		case strings.HasPrefix(line, "@@"), strings.HasPrefix(line, "Index: "), strings.HasPrefix(line, "==="):
			rendered = diffMetaStyle.Render("  " + line)
		default:
			rendered = dimStyle.Render("  " + line)
		}
		sb.WriteString(rendered + "\n")
	}
	sb.WriteString(border + "\n")
	return sb.String()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// buildFiles lists the files of the change with the diff the bundle carries
// for each: its section of the patch, or a diff of its upload item.
func buildFiles(b *bundle.ReviewBundle) []fileView {
	sections := splitPatch(b.Patch)
	items := make(map[string]int, len(b.Items))
	for i, it := range b.Items {
		items[it.Path] = i
	}

	files := make([]fileView, 0, len(b.Change.Files))
	for _, f := range b.Change.Files {
		fv := fileView{path: f.Path, action: f.Action, kind: f.Type}
		rel := relativePath(f.Path)
		if s, ok := sections[rel]; ok {
			fv.diff = s
		} else if i, ok := items[rel]; ok {
			fv.diff = itemDiff(rel, b.Items[i].Old, b.Items[i].New)
		}
		files = append(files, fv)
	}
	return files
}

// splitPatch maps each "Index: <path>" section of patch to its text.
func splitPatch(patch string) map[string]string {
	sections := make(map[string]string)
	if patch == "" {
		return sections
	}
	var path string
	var cur []string
	flush := func() {
		if path != "" {
			sections[path] = strings.Join(cur, "\n")
		}
	}
	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "Index: ") {
			flush()
			path = strings.TrimPrefix(line, "Index: ")
			cur = nil
		}
		cur = append(cur, line)
	}
	flush()
	return sections
}

// itemDiff renders a diff of one upload item, or "" for binary content.
func itemDiff(path string, old, new []byte) string {
	if bytes.IndexByte(old, 0) >= 0 || bytes.IndexByte(new, 0) >= 0 {
		return ""
	}
	lines := diff.Banner(path)
	switch {
	case len(old) == 0 && len(new) > 0:
		lines = append(lines, diff.Add(path, diff.SplitLines(new))...)
	case len(new) == 0 && len(old) > 0:
		lines = append(lines, diff.Delete(path, "", diff.SplitLines(old))...)
	default:
		frag := diff.Modify(path, "", diff.SplitLines(old), diff.SplitLines(new))
		if frag == nil {
			return ""
		}
		lines = append(lines, frag...)
	}
	return diff.Document(lines)
}

// relativePath strips the leading "//depot/" from a Perforce depot path.
// Git paths are returned unchanged.
func relativePath(p string) string {
	if !strings.HasPrefix(p, "//") {
		return p
	}
	rest := strings.TrimPrefix(p, "//")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[i+1:]
	}
	return rest
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// Run starts the TUI for the given bundle.
func Run(b *bundle.ReviewBundle, filename string) error {
	p := tea.NewProgram(New(b, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
