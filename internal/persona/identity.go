// Package persona defines the evaluator roles that vote on the catalog, the
// verdict each of them returns, and the selector that picks roles for a
// recipient.
package persona

import (
	"fmt"
	"math"
	"strings"
)

// ID identifies a persona.
type ID string

const (
	PraktikBot         ID = "praktik_bot"
	FinExpert          ID = "fin_expert"
	WowFactor          ID = "wow_factor"
	UniversalGuru      ID = "universal_guru"
	SurpriseMaster     ID = "surprise_master"
	ProfRost           ID = "prof_rost"
	RomanticAdvisor    ID = "romantic_advisor"
	KidsExpert         ID = "kids_expert"
	ElderlyCare        ID = "elderly_care"
	HobbyHunter        ID = "hobby_hunter"
	LuxuryCurator      ID = "luxury_curator"
	BudgetSaver        ID = "budget_saver"
	TechGuru           ID = "tech_guru"
	CreativeSoul       ID = "creative_soul"
	WellnessCoach      ID = "wellness_coach"
	TravelExpert       ID = "travel_expert"
	FoodieGuide        ID = "foodie_guide"
	FamilyBonds        ID = "family_bonds"
	ColleagueConnector ID = "colleague_connector"
)

const percentHint = "число_от_0_до_100"

// Identity is the static definition of one persona.
type Identity struct {
	ID          ID
	DisplayName string
	// Summary is the one-line description shown to the selector.
	Summary string
	// Intro and Task open the persona's prompt.
	Intro         string
	Task          string
	RationaleHint string
	// MetricField is the single JSON key carrying this persona's score.
	MetricField string
	MetricHint  string
	// Scale multiplies the raw metric and caps it at 100. Zero keeps the raw value.
	Scale float64
	// Fallback is the nominal metric reported when evaluation fails.
	Fallback float64
}

// MaxScore is the top of the normalized score scale.
const MaxScore = 100.0

// InRange reports whether raw is a value the persona's metric may take:
// percents lie in [0, 100], scaled metrics only need to be non-negative.
func (i Identity) InRange(raw float64) bool {
	if raw < 0 {
		return false
	}
	return i.Scale != 0 || raw <= MaxScore
}

// Normalize maps a raw metric onto the 0-100 score scale.
func (i Identity) Normalize(raw float64) float64 {
	if i.Scale != 0 {
		raw *= i.Scale
	}
	return ClampScore(raw)
}

// ClampScore limits v to [0, MaxScore].
func ClampScore(v float64) float64 {
	return math.Max(0, math.Min(MaxScore, v))
}

var identities = []Identity{
	{
		ID: PraktikBot, DisplayName: "ПрактикБот", Summary: "практичные подарки для повседневной жизни",
		Intro:         "Ты ПрактикБот - анализируешь практическую пользу подарков в повседневной жизни.",
		Task:          "Выбери ОДИН подарок с максимальной практической ценностью.",
		RationaleHint: "детальное объяснение практической пользы",
		MetricField:   "коэффициент_практической_ценности", MetricHint: percentHint, Fallback: 75,
	},
	{
		ID: FinExpert, DisplayName: "ФинЭксперт", Summary: "бюджетные решения с лучшим соотношением цена/качество",
		Intro:         "Ты ФинЭксперт - анализируешь соотношение цена/качество подарков.",
		Task:          "Выбери ОДИН подарок с лучшим экономическим эффектом.",
		RationaleHint: "экономическое обоснование с расчетами",
		MetricField:   "roi_индекс", MetricHint: "число_коэффициент_полезности", Scale: 20, Fallback: 2.5,
	},
	{
		ID: WowFactor, DisplayName: "ВауФактор", Summary: `подарки с эмоциональным эффектом "вау"`,
		Intro:         "Ты ВауФактор - ищешь подарки с высоким эмоциональным откликом.",
		Task:          "Выбери ОДИН подарок, который вызовет максимальный восторг.",
		RationaleHint: "объяснение эмоционального воздействия",
		MetricField:   "степень_восторга_процент", MetricHint: percentHint, Fallback: 75,
	},
	{
		ID: UniversalGuru, DisplayName: "УниверсалГуру", Summary: "универсальные подарки для любых ситуаций",
		Intro:         "Ты УниверсалГуру - ищешь максимально универсальные подарки.",
		Task:          "Выбери ОДИН подарок для максимального количества ситуаций.",
		RationaleHint: "объяснение универсальности применения",
		MetricField:   "процент_сценариев_использования", MetricHint: percentHint, Fallback: 70,
	},
	{
		ID: SurpriseMaster, DisplayName: "СюрпризМастер", Summary: "неожиданные и запоминающиеся подарки",
		Intro:         "Ты СюрпризМастер - ищешь нестандартные и неожиданные подарки.",
		Task:          "Выбери ОДИН самый неожиданный и запоминающийся подарок.",
		RationaleHint: "объяснение неожиданности и запоминаемости",
		MetricField:   "шанс_запомниться_процент", MetricHint: percentHint, Fallback: 75,
	},
	{
		ID: ProfRost, DisplayName: "ПрофРост", Summary: "подарки для профессионального развития",
		Intro:         "Ты ПрофРост - специализируешься на подарках для профессионального развития.",
		Task:          "Выбери ОДИН подарок с максимальной пользой для карьеры.",
		RationaleHint: "объяснение пользы для профессионального развития",
		MetricField:   "прогноз_роста_ценности_процент", MetricHint: percentHint, Fallback: 70,
	},
	{
		ID: RomanticAdvisor, DisplayName: "РомантикСоветник", Summary: "романтические подарки для близких отношений",
		Intro:         "Ты РомантикСоветник - специалист по романтическим подаркам для близких отношений.",
		Task:          "Выбери ОДИН подарок с максимальным романтическим потенциалом.",
		RationaleHint: "объяснение романтической ценности подарка",
		MetricField:   "уровень_романтики_процент", MetricHint: percentHint, Fallback: 80,
	},
	{
		ID: KidsExpert, DisplayName: "ДетскийЭксперт", Summary: "подарки специально для детей",
		Intro:         "Ты ДетскийЭксперт - специалист по подаркам для детей разного возраста.",
		Task:          "Выбери ОДИН подарок, наиболее подходящий для ребенка.",
		RationaleHint: "объяснение пользы для развития и радости ребенка",
		MetricField:   "детская_радость_процент", MetricHint: percentHint, Fallback: 85,
	},
	{
		ID: ElderlyCare, DisplayName: "ЗаботаОПожилых", Summary: "подарки для пожилых людей",
		Intro:         "Ты ЗаботаОПожилых - специалист по подаркам для людей старшего возраста.",
		Task:          "Выбери ОДИН подарок, учитывающий потребности пожилого человека.",
		RationaleHint: "объяснение пользы и удобства для пожилого человека",
		MetricField:   "возрастная_уместность_процент", MetricHint: percentHint, Fallback: 80,
	},
	{
		ID: HobbyHunter, DisplayName: "ОхотникХобби", Summary: "подарки по увлечениям и хобби",
		Intro:         "Ты ОхотникХобби - специалист по подаркам, связанным с увлечениями и хобби.",
		Task:          "Выбери ОДИН подарок, максимально соответствующий увлечениям человека.",
		RationaleHint: "объяснение связи подарка с хобби и интересами",
		MetricField:   "соответствие_хобби_процент", MetricHint: percentHint, Fallback: 75,
	},
	{
		ID: LuxuryCurator, DisplayName: "КураторЛюкса", Summary: "премиум и дорогие подарки",
		Intro:         "Ты КураторЛюкса - специалист по премиальным и роскошным подаркам.",
		Task:          "Выбери ОДИН подарок с максимальным уровнем престижа и качества.",
		RationaleHint: "объяснение премиальности и престижности подарка",
		MetricField:   "уровень_роскоши_процент", MetricHint: percentHint, Fallback: 90,
	},
	{
		ID: BudgetSaver, DisplayName: "БюджетСпаситель", Summary: "качественные бюджетные варианты",
		Intro:         "Ты БюджетСпаситель - специалист по качественным, но доступным подаркам.",
		Task:          "Выбери ОДИН подарок с минимальной стоимостью и максимальной ценностью.",
		RationaleHint: "объяснение экономности при сохранении качества",
		MetricField:   "экономичность_процент", MetricHint: percentHint, Fallback: 85,
	},
	{
		ID: TechGuru, DisplayName: "ТехГуру", Summary: "современные технологичные подарки",
		Intro:         "Ты ТехГуру - специалист по современным технологичным подаркам.",
		Task:          "Выбери ОДИН самый технологичный и современный подарок.",
		RationaleHint: "объяснение технологичности и инновационности",
		MetricField:   "уровень_технологий_процент", MetricHint: percentHint, Fallback: 80,
	},
	{
		ID: CreativeSoul, DisplayName: "ТворческаяДуша", Summary: "подарки для творческих натур",
		Intro:         "Ты ТворческаяДуша - специалист по подаркам для креативных и артистичных людей.",
		Task:          "Выбери ОДИН подарок, способствующий творческому самовыражению.",
		RationaleHint: "объяснение влияния на творчество и самовыражение",
		MetricField:   "творческий_потенциал_процент", MetricHint: percentHint, Fallback: 75,
	},
	{
		ID: WellnessCoach, DisplayName: "ВелнесТренер", Summary: "подарки для здоровья и красоты",
		Intro:         "Ты ВелнесТренер - специалист по подаркам для здоровья, красоты и благополучия.",
		Task:          "Выбери ОДИН подарок, максимально полезный для физического и ментального здоровья.",
		RationaleHint: "объяснение пользы для здоровья и самочувствия",
		MetricField:   "польза_здоровью_процент", MetricHint: percentHint, Fallback: 80,
	},
	{
		ID: TravelExpert, DisplayName: "ЭкспертПутешествий", Summary: "подарки для путешественников",
		Intro:         "Ты ЭкспертПутешествий - специалист по подаркам для любителей путешествий.",
		Task:          "Выбери ОДИН подарок, наиболее полезный в поездках и путешествиях.",
		RationaleHint: "объяснение пользы в путешествиях и поездках",
		MetricField:   "туристическая_ценность_процент", MetricHint: percentHint, Fallback: 75,
	},
	{
		ID: FoodieGuide, DisplayName: "ГидГурмана", Summary: "подарки для любителей еды",
		Intro:         "Ты ГидГурмана - специалист по подаркам для любителей еды и кулинарии.",
		Task:          "Выбери ОДИН подарок, связанный с едой, кулинарией или гастрономией.",
		RationaleHint: "объяснение гастрономической ценности подарка",
		MetricField:   "кулинарная_привлекательность_процент", MetricHint: percentHint, Fallback: 80,
	},
	{
		ID: FamilyBonds, DisplayName: "СемейныеУзы", Summary: "семейные подарки",
		Intro:         "Ты СемейныеУзы - специалист по подаркам, укрепляющим семейные отношения.",
		Task:          "Выбери ОДИН подарок, способствующий семейному единству и общению.",
		RationaleHint: "объяснение влияния на семейные отношения",
		MetricField:   "семейная_ценность_процент", MetricHint: percentHint, Fallback: 85,
	},
	{
		ID: ColleagueConnector, DisplayName: "КоллегиальныйСвязующий", Summary: "корпоративные подарки для коллег",
		Intro:         "Ты КоллегиальныйСвязующий - специалист по корпоративным подаркам для коллег.",
		Task:          "Выбери ОДИН подарок, подходящий для рабочих отношений.",
		RationaleHint: "объяснение уместности в рабочей среде",
		MetricField:   "корпоративная_уместность_процент", MetricHint: percentHint, Fallback: 70,
	},
}

var byID = func() map[ID]Identity {
	m := make(map[ID]Identity, len(identities))
	for _, i := range identities {
		m[i.ID] = i
	}
	return m
}()

// All returns every persona in table order.
func All() []Identity {
	out := make([]Identity, len(identities))
	copy(out, identities)
	return out
}

// Lookup returns the persona with the given id.
func Lookup(id ID) (Identity, bool) {
	i, ok := byID[id]
	return i, ok
}

// DisplayName returns the persona's human-readable name, or the raw id for
// tags that are not personas (e.g. backfill markers).
func DisplayName(id ID) string {
	if i, ok := byID[id]; ok {
		return i.DisplayName
	}
	return string(id)
}

// Resolve maps configured ids onto identities in table order. An empty list
// selects every persona; an unknown id is an error.
func Resolve(ids []string) ([]Identity, error) {
	if len(ids) == 0 {
		return All(), nil
	}

	want := make(map[ID]bool, len(ids))
	for _, raw := range ids {
		id := ID(strings.TrimSpace(raw))
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("unknown persona %q", raw)
		}
		want[id] = true
	}

	return Filter(want), nil
}

// Filter returns the identities whose id is set in want, in table order.
func Filter(want map[ID]bool) []Identity {
	out := make([]Identity, 0, len(want))
	for _, i := range identities {
		if want[i.ID] {
			out = append(out, i)
		}
	}
	return out
}
