// SPDX-License-Identifier: MIT
package tui

import (
	"errors"
	"testing"
	"time"

	"sigbench/internal/dispatch"
	"sigbench/internal/method"
	"sigbench/internal/methods"
	"sigbench/internal/registry"
	"sigbench/internal/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodTable(t *testing.T) {
	reg := methods.DefaultRegistry()
	out := MethodTable(reg.All())

	for _, id := range reg.IDs() {
		assert.Contains(t, out, id)
	}
	assert.Contains(t, out, "denoising")
	assert.Contains(t, out, "detection")
	assert.Contains(t, out, "default", "identity has no sweep")
}

func TestParamsTable(t *testing.T) {
	reg := methods.DefaultRegistry()
	gate, err := reg.Get(methods.NoiseGateID)
	require.NoError(t, err)

	out := ParamsTable(gate)
	assert.Contains(t, out, methods.NoiseGateID)
	for _, p := range dispatch.Parameters(gate) {
		assert.Contains(t, out, p.String())
	}
}

func TestSummaryTable(t *testing.T) {
	sig := signal.New([]float64{1, 2}, 8000)
	report := &dispatch.Report{
		RunID:   "run-42",
		Elapsed: 3 * time.Millisecond,
		Outcomes: []dispatch.Outcome{
			{MethodID: "identity_denoise", Signal: "tone", Result: method.Denoised(sig)},
			{MethodID: "peak_detection", Signal: "tone", Params: method.Params{"k": 3},
				Result: method.Detected([]method.Event{{Index: 1}})},
			{MethodID: "a_new_method", Signal: "tone", Err: method.ErrNotImplemented},
			{MethodID: "broken", Signal: "tone", Err: errors.New("boom")},
		},
	}

	out := SummaryTable(report)
	assert.Contains(t, out, "2 samples")
	assert.Contains(t, out, "1 events")
	assert.Contains(t, out, "k=3")
	assert.Contains(t, out, dispatch.StatusNotImplemented)
	assert.Contains(t, out, dispatch.StatusError)
	assert.Contains(t, out, "run run-42: 2 ok, 2 failed")
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func send(t *testing.T, m tea.Model, msgs ...tea.Msg) (MethodListModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		m, cmd = m.Update(msg)
	}
	model, ok := m.(MethodListModel)
	require.True(t, ok)
	return model, cmd
}

func TestMethodBrowserNavigation(t *testing.T) {
	reg := methods.DefaultRegistry()
	m := NewMethodListModel(reg, "")

	assert.Equal(t, "Initializing...", m.View())

	loaded := m.Init()()
	model, _ := send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40}, loaded)
	assert.Equal(t, methods.IdentityID, model.Selected().ID())
	assert.Contains(t, model.View(), methods.PeakDetectionID)

	model, _ = send(t, model, keyMsg("up"), keyMsg("down"), keyMsg("down"))
	assert.Equal(t, reg.IDs()[2], model.Selected().ID())

	model, _ = send(t, model, keyMsg("enter"))
	assert.Equal(t, ParamsScreen, model.activeScreen)
	assert.Contains(t, model.View(), "Parameter Sweep")

	model, _ = send(t, model, keyMsg("esc"))
	assert.Equal(t, ListScreen, model.activeScreen)

	// Moving past the end stays on the last method.
	for range reg.Len() + 2 {
		model, _ = send(t, model, keyMsg("j"))
	}
	assert.Equal(t, reg.IDs()[reg.Len()-1], model.Selected().ID())

	_, cmd := send(t, model, keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestMethodBrowserTaskFilter(t *testing.T) {
	m := NewMethodListModel(methods.DefaultRegistry(), method.Detection)
	model, _ := send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40}, m.Init()())

	view := model.View()
	assert.Contains(t, view, methods.PeakDetectionID)
	assert.NotContains(t, view, methods.IdentityID)
}

func TestMethodBrowserErrors(t *testing.T) {
	m := NewMethodListModel(methods.DefaultRegistry(), "segmentation")
	model, _ := send(t, m, m.Init()())
	assert.Contains(t, model.View(), "Error:")

	empty := NewMethodListModel(registry.New(), "")
	model, _ = send(t, empty, tea.WindowSizeMsg{Width: 80, Height: 20}, empty.Init()())
	assert.Nil(t, model.Selected())
	assert.Contains(t, model.View(), "No methods registered.")

	model, _ = send(t, model, keyMsg("enter"))
	assert.Equal(t, ListScreen, model.activeScreen)
}
