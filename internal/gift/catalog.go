package gift

import (
	"fmt"
	"strings"
)

var fallbackCatalog = []Record{
	{Name: "Умный велокомпьютер", Description: "Устройство для отслеживания маршрутов, скорости и других показателей во время велопрогулок", Cost: "6000 - 15000", Relevance: 9, Query: "велокомпьютер gps"},
	{Name: "Беспроводные наушники с шумоподавлением", Description: "Качественный звук для прослушивания музыки и просмотра фильмов", Cost: "8000 - 25000", Relevance: 8, Query: "беспроводные наушники шумоподавление"},
	{Name: "Фитнес-браслет или умные часы", Description: "Отслеживание тренировок в зале и активности в путешествиях", Cost: "5000 - 30000", Relevance: 9, Query: "умные часы фитнес браслет"},
	{Name: "Портативная кофеварка для путешествий", Description: "Практичный подарок для любителя путешествий", Cost: "3000 - 7000", Relevance: 7, Query: "портативная кофеварка"},
	{Name: "Книга по новым технологиям Java", Description: "Для профессионального развития программиста", Cost: "2000 - 10000", Relevance: 8, Query: "книга java программирование"},
	{Name: "Абонемент на массаж", Description: "Отличное дополнение к занятиям в спортзале", Cost: "5000 - 12000", Relevance: 7, Query: "сертификат на массаж"},
	{Name: "Компактный внешний аккумулятор", Description: "Пригодится в путешествиях и во время длительных велопрогулок", Cost: "2000 - 6000", Relevance: 8, Query: "внешний аккумулятор powerbank"},
	{Name: "Годовая подписка на стриминговый сервис", Description: "Доступ к фильмам и сериалам для любителя кино", Cost: "3000 - 7000", Relevance: 8, Query: "подписка онлайн кинотеатр"},
	{Name: "Набор для приготовления крафтового пива", Description: "Новое хобби, сочетающееся с любовью к активному образу жизни", Cost: "5000 - 12000", Relevance: 6, Query: "набор для пивоварения"},
	{Name: "Подарочный сертификат в магазин велоаксессуаров", Description: "Возможность выбрать нужные комплектующие или аксессуары для велосипеда", Cost: "3000 - 15000", Relevance: 9, Query: "велоаксессуары"},
}

// FallbackCatalog returns a copy of the built-in catalog used when generation fails.
func FallbackCatalog() []Record {
	out := make([]Record, len(fallbackCatalog))
	copy(out, fallbackCatalog)
	return out
}

// FormatCatalog renders the catalog as the numbered list embedded in persona prompts.
func FormatCatalog(catalog []Record) string {
	var sb strings.Builder
	for i, r := range catalog {
		fmt.Fprintf(&sb, "%d. %s - %s - Стоимость: %s₽ - Релевантность: %d/10\n", i+1, r.Name, r.Description, r.Cost, r.Relevance)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// Find resolves a gift name against the catalog: exact match first, then a
// case-insensitive match on trimmed names.
func Find(catalog []Record, name string) (Record, bool) {
	for _, r := range catalog {
		if r.Name == name {
			return r, true
		}
	}

	want := strings.TrimSpace(name)
	for _, r := range catalog {
		if strings.EqualFold(strings.TrimSpace(r.Name), want) {
			return r, true
		}
	}

	return Record{}, false
}
