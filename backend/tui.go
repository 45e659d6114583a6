package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

const tuiTickInterval = 30 * time.Millisecond

type tickMsg time.Time

type hintMsg struct {
	res engine.SearchResult
	err error
}

type playModel struct {
	controller *GameController
	cursorRow  int
	cursorCol  int
	message    string
	showScore  bool
	hint       *engine.Move
	hinting    bool
	maxDepth   int
}

func newPlayModel(controller *GameController, maxDepth int) playModel {
	size := controller.Settings().BoardSize
	return playModel{
		controller: controller,
		cursorRow:  size / 2,
		cursorCol:  size / 2,
		maxDepth:   maxDepth,
	}
}

func tick() tea.Cmd {
	return tea.Tick(tuiTickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m playModel) Init() tea.Cmd {
	return tick()
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.controller.Tick() {
			m.hint = nil
		}
		return m, tick()
	case hintMsg:
		m.hinting = false
		if msg.err != nil {
			m.message = "hint: " + msg.err.Error()
			return m, nil
		}
		move := msg.res.Move
		m.hint = &move
		m.message = fmt.Sprintf("suggested %s (score %d, depth %d)", move, msg.res.Score, msg.res.Depth)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m playModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	size := m.controller.Settings().BoardSize
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up":
		m.cursorRow = (m.cursorRow - 1 + size) % size
	case "down":
		m.cursorRow = (m.cursorRow + 1) % size
	case "left":
		m.cursorCol = (m.cursorCol - 1 + size) % size
	case "right":
		m.cursorCol = (m.cursorCol + 1) % size
	case "enter", " ":
		applied, reason := m.controller.ApplyHumanMove(engine.Move{Row: m.cursorRow, Col: m.cursorCol})
		if applied {
			m.hint = nil
			m.message = ""
		} else {
			m.message = reason
		}
	case "+", "=":
		m.message = m.changeDepth(1)
	case "-", "_":
		m.message = m.changeDepth(-1)
	case "s":
		m.showScore = !m.showScore
	case "h":
		if m.hinting {
			return m, nil
		}
		m.hinting = true
		m.message = "thinking..."
		controller := m.controller
		depth := m.engineDepth()
		return m, func() tea.Msg {
			res, err := controller.Hint(context.Background(), depth)
			return hintMsg{res: res, err: err}
		}
	case "u":
		if ok, reason := m.controller.Undo(); !ok {
			m.message = reason
		} else {
			m.hint = nil
			m.message = "undone"
		}
	case "n":
		settings := m.controller.Settings()
		if err := m.controller.StartGame(settings); err != nil {
			m.message = err.Error()
		} else {
			m.hint = nil
			m.message = "new game"
		}
	}
	return m, nil
}

func (m playModel) engineDepth() int {
	settings := m.controller.Settings()
	if settings.WhiteType == PlayerAI && settings.BlackType != PlayerAI {
		return settings.WhiteDepth
	}
	return settings.BlackDepth
}

func (m playModel) changeDepth(delta int) string {
	settings := m.controller.Settings()
	depth := m.engineDepth() + delta
	if depth < 0 || depth > m.maxDepth {
		return fmt.Sprintf("depth stays at %d (0..%d)", m.engineDepth(), m.maxDepth)
	}
	settings.BlackDepth = depth
	settings.WhiteDepth = depth
	if err := m.controller.UpdateSettings(settings, false); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("search depth %d", depth)
}

var (
	tuiTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	tuiBlackStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	tuiWhiteStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	tuiEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tuiCursorStyle = lipgloss.NewStyle().Background(lipgloss.Color("24"))
	tuiLastStyle   = lipgloss.NewStyle().Underline(true)
	tuiWinStyle    = lipgloss.NewStyle().Background(lipgloss.Color("22"))
	tuiHintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	tuiHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func (m playModel) View() string {
	state := m.controller.State()
	size := state.Board.Size()
	winning := make(map[engine.Move]bool, len(state.WinningLine))
	for _, mv := range state.WinningLine {
		winning[mv] = true
	}

	var b strings.Builder
	b.WriteString(tuiTitleStyle.Render("Gomoku"))
	b.WriteString("\n\n   ")
	for col := 0; col < size; col++ {
		b.WriteString(fmt.Sprintf("%-2s", string(rune('a'+col))))
	}
	b.WriteString("\n")
	for row := 0; row < size; row++ {
		b.WriteString(fmt.Sprintf("%2d ", row))
		for col := 0; col < size; col++ {
			move := engine.Move{Row: row, Col: col}
			cell, _ := state.Board.Get(row, col)
			glyph := tuiEmptyStyle.Render("·")
			switch {
			case cell == engine.CellBlack:
				glyph = tuiBlackStyle.Render("X")
			case cell == engine.CellWhite:
				glyph = tuiWhiteStyle.Render("O")
			case m.hint != nil && *m.hint == move:
				glyph = tuiHintStyle.Render("*")
			}
			if state.HasLastMove && state.LastMove == move {
				glyph = tuiLastStyle.Render(glyph)
			}
			if winning[move] {
				glyph = tuiWinStyle.Render(glyph)
			}
			if row == m.cursorRow && col == m.cursorCol {
				glyph = tuiCursorStyle.Render(glyph)
			}
			b.WriteString(glyph + " ")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine(state))
	b.WriteString("\n")
	if m.showScore {
		b.WriteString(fmt.Sprintf("score %d  fingerprint %s  depth %d\n", state.Score, formatFingerprint(state.Fingerprint), m.engineDepth()))
	}
	if m.message != "" {
		b.WriteString(m.message + "\n")
	}
	b.WriteString(tuiHelpStyle.Render("arrows move · enter place · +/- depth · s score · h hint · u undo · n new · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m playModel) statusLine(state GameState) string {
	switch state.Status {
	case StatusBlackWon:
		return "Black (X) wins"
	case StatusWhiteWon:
		return "White (O) wins"
	case StatusDraw:
		return "Draw"
	case StatusNotStarted:
		return "Press n to start"
	}
	turn := fmt.Sprintf("%s to move", state.ToMove)
	if m.controller.AiThinking() {
		turn += " (engine thinking)"
	}
	return turn
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	settings := SettingsFromConfig(cfg)
	if playEngineSide != "" {
		cfg.EngineColor = strings.ToLower(playEngineSide)
		if err := cfg.Validate(); err != nil {
			return err
		}
		settings = SettingsFromConfig(cfg)
	}
	if playDepth >= 0 {
		settings.BlackDepth = playDepth
		settings.WhiteDepth = playDepth
	}
	if playPvP {
		settings.BlackType = PlayerHuman
		settings.WhiteType = PlayerHuman
	}
	controller, err := NewGameController(settings)
	if err != nil {
		return err
	}
	if err := controller.StartGame(settings); err != nil {
		return err
	}
	// The board owns the terminal.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	p := tea.NewProgram(newPlayModel(controller, cfg.AiMaxDepth), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
