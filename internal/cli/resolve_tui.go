package cli

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guiyumin/vlink/internal/core/resolver"
)

var resolveInfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

// resolveState holds resolution state shared with the background goroutine
type resolveState struct {
	mu     sync.RWMutex
	done   bool
	result resolver.VideoResult
}

func (s *resolveState) setDone(result resolver.VideoResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.result = result
}

func (s *resolveState) get() (bool, resolver.VideoResult) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done, s.result
}

type resolveTickMsg time.Time

type resolveModel struct {
	spinner  spinner.Model
	url      string
	platform string
	state    *resolveState
	cancel   context.CancelFunc
}

func newResolveModel(url, platform string, state *resolveState, cancel context.CancelFunc) resolveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return resolveModel{
		spinner:  s,
		url:      url,
		platform: platform,
		state:    state,
		cancel:   cancel,
	}
}

func resolveTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return resolveTickMsg(t)
	})
}

func (m resolveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, resolveTickCmd())
}

func (m resolveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancel()
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resolveTickMsg:
		if done, _ := m.state.get(); done {
			return m, tea.Quit
		}
		return m, resolveTickCmd()
	}

	return m, nil
}

func (m resolveModel) View() string {
	if done, _ := m.state.get(); done {
		return ""
	}

	return fmt.Sprintf("\n  %s Resolving %s link: %s\n\n",
		m.spinner.View(),
		m.platform,
		resolveInfoStyle.Render(m.url),
	)
}

// runResolveWithSpinner resolves in the background while a spinner runs
func runResolveWithSpinner(svc *resolver.Service, url, platform string) (resolver.VideoResult, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := &resolveState{}
	go func() {
		state.setDone(svc.Resolve(ctx, url, platform))
	}()

	p := tea.NewProgram(newResolveModel(url, platform, state, cancel))
	if _, err := p.Run(); err != nil {
		return resolver.VideoResult{}, err
	}

	done, result := state.get()
	if !done {
		return resolver.VideoResult{}, fmt.Errorf("resolution cancelled")
	}
	return result, nil
}

func sortedFormatKeys(formats map[string]resolver.Format) []string {
	keys := make([]string, 0, len(formats))
	for k := range formats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
