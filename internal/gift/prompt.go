package gift

import "strings"

// CatalogSize is how many candidates the generation prompt asks for.
const CatalogSize = 10

const generationPrompt = `Ты эксперт по выбору подарков. На основе информации о человеке предложи 10 подходящих подарков.

ИНФОРМАЦИЯ О ЧЕЛОВЕКЕ:
{person_info}

🔥 КРИТИЧЕСКИ ВАЖНО: Твой ответ должен быть СТРОГО в формате JSON массива, без дополнительного текста, объяснений или markdown разметки.

Структура каждого элемента массива:
{
  "подарок": "точное название подарка",
  "описание": "краткое описание и обоснование выбора",
  "стоимость": "диапазон цен в формате 'минимум - максимум'",
  "релевантность": число_от_1_до_10,
  "query": "ключевые слова для поиска в интернет магазине"
}

❗ НЕ добавляй никакого текста до или после JSON массива
❗ НЕ используй markdown разметку
❗ Отвечай ТОЛЬКО JSON массивом из 10 подарков`

// GenerationPrompt renders the catalog-generation prompt for a person description.
func GenerationPrompt(personInfo string) string {
	return strings.Replace(generationPrompt, "{person_info}", personInfo, 1)
}
