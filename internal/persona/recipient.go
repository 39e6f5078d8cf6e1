package persona

import (
	"strings"
	"unicode"
)

// Recipient types understood by the selector.
const (
	RecipientColleague    = "коллега"
	RecipientRelative     = "родственник"
	RecipientChild        = "ребенок"
	RecipientGirlfriend   = "девушка"
	RecipientBoyfriend    = "парень"
	RecipientElderly      = "пожилой человек"
	RecipientFriend       = "друг"
	RecipientBoss         = "начальник"
	RecipientParent       = "родитель"
	RecipientSibling      = "брат/сестра"
	RecipientSpouse       = "супруг/супруга"
	RecipientTeacher      = "учитель"
	RecipientNeighbor     = "сосед"
	RecipientAcquaintance = "знакомый"
)

// RecipientTypes lists every recipient type.
func RecipientTypes() []string {
	return []string{
		RecipientColleague, RecipientRelative, RecipientChild, RecipientGirlfriend,
		RecipientBoyfriend, RecipientElderly, RecipientFriend, RecipientBoss,
		RecipientParent, RecipientSibling, RecipientSpouse, RecipientTeacher,
		RecipientNeighbor, RecipientAcquaintance,
	}
}

var fallbackSets = map[string][]ID{
	RecipientColleague:  {ColleagueConnector, ProfRost, PraktikBot, BudgetSaver},
	RecipientChild:      {KidsExpert, CreativeSoul, SurpriseMaster, TechGuru},
	RecipientGirlfriend: {RomanticAdvisor, WellnessCoach, LuxuryCurator, CreativeSoul},
	RecipientBoyfriend:  {TechGuru, HobbyHunter, PraktikBot, SurpriseMaster},
	RecipientElderly:    {ElderlyCare, WellnessCoach, FamilyBonds, PraktikBot},
	RecipientRelative:   {FamilyBonds, UniversalGuru, WellnessCoach, HobbyHunter},
	RecipientFriend:     {SurpriseMaster, HobbyHunter, UniversalGuru, WowFactor},
	RecipientBoss:       {LuxuryCurator, ProfRost, ColleagueConnector, UniversalGuru},
	RecipientSpouse:     {RomanticAdvisor, LuxuryCurator, FamilyBonds, WellnessCoach},
}

var defaultFallbackSet = []ID{UniversalGuru, PraktikBot, SurpriseMaster, FinExpert}

// FallbackSet returns the preset personas for a recipient type.
func FallbackSet(recipient string) []ID {
	set, ok := fallbackSets[recipient]
	if !ok {
		set = defaultFallbackSet
	}
	out := make([]ID, len(set))
	copy(out, set)
	return out
}

// recipientKeywords is checked in order; the first type with a matching word wins.
// A keyword ending in '*' matches as a word prefix, otherwise the whole word must match.
var recipientKeywords = []struct {
	recipient string
	words     []string
}{
	{RecipientChild, []string{"ребенок", "ребёнок", "ребенка", "ребёнка", "сын", "сына", "сыну", "сынок", "дочь", "дочка", "дочке", "дочери", "малыш*", "школьни*", "мальчик*", "девочк*"}},
	{RecipientElderly, []string{"пожил*", "пенсионер*", "бабушк*", "дедушк*"}},
	{RecipientParent, []string{"мама", "маме", "маму", "мамы", "папа", "папе", "папу", "папы", "отец", "отцу", "отца", "мать", "матери", "родител*"}},
	{RecipientSibling, []string{"брат", "брату", "брата", "братик*", "сестр*"}},
	{RecipientSpouse, []string{"муж", "мужа", "мужу", "жена", "жене", "жену", "жены", "супруг*"}},
	{RecipientGirlfriend, []string{"девушк*", "невест*"}},
	{RecipientBoyfriend, []string{"парень", "парня", "парню", "бойфренд*", "жених*"}},
	{RecipientBoss, []string{"начальник*", "руководител*", "босс*", "шеф*", "директор*"}},
	{RecipientColleague, []string{"коллег*", "сотрудни*"}},
	{RecipientTeacher, []string{"учител*", "преподавател*", "педагог*", "воспитател*"}},
	{RecipientNeighbor, []string{"сосед*"}},
	{RecipientRelative, []string{"родственни*", "тётя", "тетя", "тёте", "тете", "дядя", "дяде", "племянни*", "кузен*", "кузин*"}},
	{RecipientFriend, []string{"друг", "друга", "другу", "подруг*", "дружищ*"}},
	{RecipientAcquaintance, []string{"знаком*"}},
}

// DetectRecipient guesses the recipient type from a free-text description,
// returning def when nothing matches.
func DetectRecipient(text, def string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	for _, entry := range recipientKeywords {
		for _, kw := range entry.words {
			prefix, isPrefix := strings.CutSuffix(kw, "*")
			for _, w := range words {
				if (isPrefix && strings.HasPrefix(w, prefix)) || (!isPrefix && w == kw) {
					return entry.recipient
				}
			}
		}
	}

	return def
}
