package persona

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/popov-vn/ai-agent/internal/extract"
	"github.com/popov-vn/ai-agent/internal/llm"
)

// Selector asks the model which personas suit a recipient.
type Selector struct {
	client llm.Client
	log    *slog.Logger
}

// NewSelector creates a Selector.
func NewSelector(client llm.Client, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Selector{client: client, log: logger.With("component", "persona_selector")}
}

// SelectorPrompt renders the selector prompt.
func SelectorPrompt(personInfo, recipient string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ИНФОРМАЦИЯ О ЧЕЛОВЕКЕ:\n%s\n\nТИП ПОЛУЧАТЕЛЯ ПОДАРКА: %s\n\n", personInfo, recipient)
	sb.WriteString("Ты АгентСелектор - определяешь какие специализированные агенты лучше всего подойдут для выбора подарка.\n\n")
	sb.WriteString("ДОСТУПНЫЕ АГЕНТЫ:\n")
	for _, i := range identities {
		fmt.Fprintf(&sb, "- %s: %s\n", i.ID, i.Summary)
	}
	sb.WriteString("\nВыбери 4-6 наиболее подходящих агентов для данного получателя и ситуации.\n\n")
	sb.WriteString("Ответь СТРОГО в JSON формате:\n{\n")
	sb.WriteString("  \"selected_agents\": [\"agent1\", \"agent2\", \"agent3\", \"agent4\"],\n")
	sb.WriteString("  \"reasoning\": \"объяснение выбора агентов\"\n}")
	return sb.String()
}

// Select returns the personas to run, in table order. Unknown ids in the
// reply are dropped; an unusable reply yields the recipient's fallback set.
func (s *Selector) Select(ctx context.Context, personInfo, recipient string) []ID {
	ids, reasoning, err := s.selectIDs(ctx, personInfo, recipient)
	if err != nil {
		set := FallbackSet(recipient)
		s.log.WarnContext(ctx, "Persona selection failed, using fallback set", "recipient", recipient, "personas", set, "error", err)
		return set
	}

	s.log.InfoContext(ctx, "Personas selected", "recipient", recipient, "personas", ids, "reasoning", reasoning)
	return ids
}

func (s *Selector) selectIDs(ctx context.Context, personInfo, recipient string) ([]ID, string, error) {
	raw, err := s.client.Complete(ctx, SelectorPrompt(personInfo, recipient))
	if err != nil {
		return nil, "", err
	}

	obj, err := extract.Object(extract.TrimToObject(raw))
	if err != nil {
		return nil, "", err
	}

	list, ok := obj["selected_agents"].([]any)
	if !ok {
		return nil, "", fmt.Errorf("selected_agents is not a list")
	}

	want := make(map[ID]bool, len(list))
	for _, item := range list {
		name, _ := item.(string)
		id := ID(strings.TrimSpace(name))
		if _, known := byID[id]; !known {
			s.log.DebugContext(ctx, "Dropping unknown persona from selection", "value", item)
			continue
		}
		want[id] = true
	}

	if len(want) == 0 {
		return nil, "", fmt.Errorf("no known personas selected")
	}

	reasoning, _ := obj["reasoning"].(string)

	selected := Filter(want)
	ids := make([]ID, len(selected))
	for i, identity := range selected {
		ids[i] = identity.ID
	}

	return ids, reasoning, nil
}
