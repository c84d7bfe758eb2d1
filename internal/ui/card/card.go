// Package card renders one automation as a trigger → action card.
package card

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/automator/internal/cachemanager"
	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/ui/styles"
	"github.com/zjrosen/automator/internal/workflow"
)

// stackBelow is the card width under which trigger and action are stacked
// instead of placed side by side.
const stackBelow = 56

const cacheTTL = 5 * time.Minute

// Input is everything a card's appearance depends on.
type Input struct {
	Index      int
	Automation workflow.Automation
	Width      int
	Selected   bool
	Editing    bool
}

// Render draws a card without caching.
func Render(in Input) string {
	width := max(in.Width, 24)
	inner := width - 4 // border and padding
	a := in.Automation

	col := inner
	if width >= stackBelow {
		col = (inner - 5) / 2
	}
	trigger := column("Trigger", styles.TriggerAccentColor, a.Trigger.Service, a.Trigger.Event,
		conditionChips(a.Trigger.Conditions, styles.TriggerAccentColor, col), col)
	action := column("Action", styles.ActionAccentColor, a.Action.Service, a.Action.Operation,
		detailChips(a.Action.Details, styles.ActionAccentColor, col), col)

	var body string
	if width < stackBelow {
		arrow := lipgloss.NewStyle().Foreground(styles.ArrowColor).Render("↓")
		body = lipgloss.JoinVertical(lipgloss.Left, trigger, arrow, action)
	} else {
		arrow := lipgloss.NewStyle().
			Foreground(styles.ArrowColor).
			Width(5).
			Align(lipgloss.Center).
			Render("\n→")
		body = lipgloss.JoinHorizontal(lipgloss.Top, trigger, arrow, action)
	}

	header := styles.HintStyle.Render(fmt.Sprintf("#%d", in.Index+1))
	if in.Editing {
		header += " " + lipgloss.NewStyle().Foreground(styles.StatusWarningColor).Render("✎ editing")
	}

	border := styles.BorderDefaultColor
	if in.Selected {
		border = styles.BorderHighlightFocusColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width - 2).
		Render(header + "\n" + body)
}

// column stacks the kind label, the service with its icon, the wrapped
// event or operation, and the chips.
func column(kind string, accent lipgloss.TerminalColor, service, verb string, chips []string, width int) string {
	lines := []string{
		lipgloss.NewStyle().Foreground(accent).Bold(true).Render(strings.ToUpper(kind)),
		fit(Icon(service)+" "+lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimaryColor).Render(workflow.Label(service)), width),
		styles.SubtitleStyle.Render(wordwrap.String(workflow.Label(verb), width)),
	}
	lines = append(lines, chips...)
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func conditionChips(conds []workflow.Condition, accent lipgloss.TerminalColor, width int) []string {
	chips := make([]string, 0, len(conds))
	for _, c := range conds {
		chips = append(chips, conditionChip(c, accent, width))
	}
	return flow(chips, width)
}

func detailChips(d workflow.Details, accent lipgloss.TerminalColor, width int) []string {
	pairs := d.Pairs()
	chips := make([]string, 0, len(pairs))
	for _, p := range pairs {
		chips = append(chips, detailChip(p, accent, width))
	}
	return flow(chips, width)
}

// Renderer caches rendered cards. The cache key covers every field of
// Input, so a changed automation or width never returns a stale card.
type Renderer struct {
	cache *cachemanager.ReadThroughCache[string, string, Input]
}

// NewRenderer creates a caching renderer.
func NewRenderer() *Renderer {
	store := cachemanager.NewInMemoryCacheManager[string, string]("cards", cacheTTL, cachemanager.DefaultCleanupInterval)
	return &Renderer{
		cache: cachemanager.NewReadThroughCache[string, string, Input](store,
			func(_ context.Context, in Input) (string, error) {
				return Render(in), nil
			}, false),
	}
}

// Render returns the card for in, from cache when possible.
func (r *Renderer) Render(in Input) string {
	key, err := Key(in)
	if err != nil {
		log.ErrorErr(log.CatCache, "card key failed, rendering uncached", err)
		return Render(in)
	}
	out, _ := r.cache.GetWithRefresh(context.Background(), key, in, cacheTTL)
	return out
}

// Key fingerprints in for the render cache.
func Key(in Input) (string, error) {
	data, err := json.Marshal(in.Automation)
	if err != nil {
		return "", err
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	return fmt.Sprintf("%d:%d:%t:%t:%x", in.Index, in.Width, in.Selected, in.Editing, h.Sum64()), nil
}
