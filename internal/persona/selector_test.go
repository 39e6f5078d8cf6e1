package persona

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/popov-vn/ai-agent/internal/llm"
)

func TestSelectorSelect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		recipient string
		reply     string
		err       error
		want      []ID
	}{
		{
			name:      "valid selection in table order",
			recipient: RecipientFriend,
			reply:     `{"selected_agents": ["tech_guru", "praktik_bot", "hobby_hunter", "wow_factor"], "reasoning": "любит технику"}`,
			want:      []ID{PraktikBot, WowFactor, HobbyHunter, TechGuru},
		},
		{
			name:      "unknown ids dropped",
			recipient: RecipientFriend,
			reply:     "Ответ: {\"selected_agents\": [\"agent_selector\", \"fin_expert\", 42, \"nobody\"], \"reasoning\": \"\"}",
			want:      []ID{FinExpert},
		},
		{
			name:      "garbage uses recipient mapping",
			recipient: RecipientColleague,
			reply:     "что-то пошло не так",
			want:      []ID{ColleagueConnector, ProfRost, PraktikBot, BudgetSaver},
		},
		{
			name:      "only unknown ids",
			recipient: RecipientChild,
			reply:     `{"selected_agents": ["a", "b"]}`,
			want:      []ID{KidsExpert, CreativeSoul, SurpriseMaster, TechGuru},
		},
		{
			name:      "wrong type",
			recipient: RecipientSpouse,
			reply:     `{"selected_agents": "praktik_bot"}`,
			want:      []ID{RomanticAdvisor, LuxuryCurator, FamilyBonds, WellnessCoach},
		},
		{
			name:      "completion failure with unmapped recipient",
			recipient: RecipientTeacher,
			err:       errors.New("down"),
			want:      []ID{UniversalGuru, PraktikBot, SurpriseMaster, FinExpert},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := llm.ClientFunc(func(_ context.Context, prompt string) (string, error) {
				assert.Contains(t, prompt, "ТИП ПОЛУЧАТЕЛЯ ПОДАРКА: "+tt.recipient)
				return tt.reply, tt.err
			})
			got := NewSelector(client, nil).Select(context.Background(), "Описание человека", tt.recipient)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectorPromptListsEveryPersona(t *testing.T) {
	t.Parallel()

	p := SelectorPrompt("info", RecipientBoss)
	for _, i := range All() {
		assert.Contains(t, p, "- "+string(i.ID)+": "+i.Summary+"\n")
	}
	assert.Contains(t, p, `"selected_agents"`)
}

func TestFallbackSetIsACopy(t *testing.T) {
	t.Parallel()

	set := FallbackSet(RecipientFriend)
	set[0] = "changed"
	assert.Equal(t, SurpriseMaster, FallbackSet(RecipientFriend)[0])
}
