package seeders

import (
	"log"

	"github.com/lingokit/grambot/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrammarSeeder populates the grammar reference tables
type GrammarSeeder struct {
	db *gorm.DB
}

// NewGrammarSeeder creates a new grammar seeder
func NewGrammarSeeder(db *gorm.DB) *GrammarSeeder {
	return &GrammarSeeder{db: db}
}

var grammarCategories = []model.GrammarCategory{
	{ID: "TENSES", Name: "Tenses & Aspect", NameRu: "Времена и видовременные формы", SortOrder: 1},
	{ID: "MODALS", Name: "Modal Verbs", NameRu: "Модальные глаголы", SortOrder: 2},
	{ID: "CONDITIONALS", Name: "Conditionals", NameRu: "Условные предложения", SortOrder: 3},
	{ID: "PASSIVE", Name: "Passive Voice", NameRu: "Страдательный залог", SortOrder: 4},
	{ID: "QUESTIONS", Name: "Questions & Negation", NameRu: "Вопросы и отрицания", SortOrder: 5},
	{ID: "ARTICLES", Name: "Articles & Determiners", NameRu: "Артикли и детерминативы", SortOrder: 6},
	{ID: "NOUNS", Name: "Nouns & Pronouns", NameRu: "Существительные и местоимения", SortOrder: 7},
	{ID: "ADJADV", Name: "Adjectives & Adverbs", NameRu: "Прилагательные и наречия", SortOrder: 8},
	{ID: "PREPOSITIONS", Name: "Prepositions", NameRu: "Предлоги", SortOrder: 9},
	{ID: "CLAUSES", Name: "Clauses & Sentence Structure", NameRu: "Придаточные и структура предложения", SortOrder: 10},
	{ID: "VERBPAT", Name: "Verb Patterns", NameRu: "Глагольные конструкции", SortOrder: 11},
	{ID: "OTHER", Name: "Other Structures", NameRu: "Прочие конструкции", SortOrder: 12},
}

var starterTopics = []model.GrammarTopic{
	{ID: "PRESENT_SIMPLE", CategoryID: "TENSES", Name: "Present Simple", NameRu: "Настоящее простое", CefrLevel: "A1", SortOrder: 1},
	{ID: "PRESENT_CONTINUOUS", CategoryID: "TENSES", Name: "Present Continuous", NameRu: "Настоящее продолженное", CefrLevel: "A1", SortOrder: 2},
	{ID: "PAST_SIMPLE", CategoryID: "TENSES", Name: "Past Simple", NameRu: "Прошедшее простое", CefrLevel: "A1", SortOrder: 3},
	{ID: "PRESENT_PERFECT", CategoryID: "TENSES", Name: "Present Perfect", NameRu: "Настоящее совершенное", CefrLevel: "A2", SortOrder: 4},
	{ID: "PAST_CONTINUOUS", CategoryID: "TENSES", Name: "Past Continuous", NameRu: "Прошедшее продолженное", CefrLevel: "A2", SortOrder: 5},
	{ID: "FUTURE_FORMS", CategoryID: "TENSES", Name: "Future Forms", NameRu: "Формы будущего времени", CefrLevel: "A2", SortOrder: 6},
	{ID: "PAST_PERFECT", CategoryID: "TENSES", Name: "Past Perfect", NameRu: "Прошедшее совершенное", CefrLevel: "B1", SortOrder: 7},

	{ID: "MODALS_ABILITY", CategoryID: "MODALS", Name: "Can, Could & Be Able To", NameRu: "Модальные глаголы возможности", CefrLevel: "A2", SortOrder: 1},
	{ID: "MODALS_OBLIGATION", CategoryID: "MODALS", Name: "Must, Have To & Should", NameRu: "Модальные глаголы долженствования", CefrLevel: "B1", SortOrder: 2},
	{ID: "MODALS_DEDUCTION", CategoryID: "MODALS", Name: "Modals of Deduction", NameRu: "Модальные глаголы предположения", CefrLevel: "B2", SortOrder: 3},

	{ID: "ZERO_FIRST_CONDITIONAL", CategoryID: "CONDITIONALS", Name: "Zero & First Conditional", NameRu: "Нулевой и первый тип условных", CefrLevel: "A2", SortOrder: 1},
	{ID: "SECOND_CONDITIONAL", CategoryID: "CONDITIONALS", Name: "Second Conditional", NameRu: "Второй тип условных", CefrLevel: "B1", SortOrder: 2},
	{ID: "THIRD_CONDITIONAL", CategoryID: "CONDITIONALS", Name: "Third & Mixed Conditionals", NameRu: "Третий и смешанный типы условных", CefrLevel: "B2", SortOrder: 3},

	{ID: "PASSIVE_PRESENT_PAST", CategoryID: "PASSIVE", Name: "Passive: Present & Past", NameRu: "Пассив в настоящем и прошедшем", CefrLevel: "B1", SortOrder: 1},
	{ID: "PASSIVE_ADVANCED", CategoryID: "PASSIVE", Name: "Passive: Advanced Forms", NameRu: "Сложные формы пассива", CefrLevel: "B2", SortOrder: 2},

	{ID: "QUESTION_FORMS", CategoryID: "QUESTIONS", Name: "Question Forms", NameRu: "Построение вопросов", CefrLevel: "A1", SortOrder: 1},
	{ID: "TAG_QUESTIONS", CategoryID: "QUESTIONS", Name: "Tag Questions", NameRu: "Разделительные вопросы", CefrLevel: "B1", SortOrder: 2},

	{ID: "ARTICLES_BASIC", CategoryID: "ARTICLES", Name: "A, An & The", NameRu: "Артикли a, an, the", CefrLevel: "A1", SortOrder: 1},
	{ID: "QUANTIFIERS", CategoryID: "ARTICLES", Name: "Quantifiers", NameRu: "Кванторы", CefrLevel: "A2", SortOrder: 2},

	{ID: "PRONOUNS", CategoryID: "NOUNS", Name: "Pronouns", NameRu: "Местоимения", CefrLevel: "A1", SortOrder: 1},
	{ID: "COUNTABLE_UNCOUNTABLE", CategoryID: "NOUNS", Name: "Countable & Uncountable Nouns", NameRu: "Исчисляемые и неисчисляемые существительные", CefrLevel: "A2", SortOrder: 2},

	{ID: "COMPARATIVES", CategoryID: "ADJADV", Name: "Comparatives & Superlatives", NameRu: "Степени сравнения", CefrLevel: "A2", SortOrder: 1},
	{ID: "ADVERBS_FREQUENCY", CategoryID: "ADJADV", Name: "Adverbs of Frequency", NameRu: "Наречия частотности", CefrLevel: "A1", SortOrder: 2},

	{ID: "PREPOSITIONS_TIME_PLACE", CategoryID: "PREPOSITIONS", Name: "Prepositions of Time & Place", NameRu: "Предлоги времени и места", CefrLevel: "A1", SortOrder: 1},
	{ID: "DEPENDENT_PREPOSITIONS", CategoryID: "PREPOSITIONS", Name: "Dependent Prepositions", NameRu: "Устойчивые предлоги", CefrLevel: "B2", SortOrder: 2},

	{ID: "RELATIVE_CLAUSES", CategoryID: "CLAUSES", Name: "Relative Clauses", NameRu: "Относительные придаточные", CefrLevel: "B1", SortOrder: 1},
	{ID: "REPORTED_SPEECH", CategoryID: "CLAUSES", Name: "Reported Speech", NameRu: "Косвенная речь", CefrLevel: "B1", SortOrder: 2},

	{ID: "GERUND_INFINITIVE", CategoryID: "VERBPAT", Name: "Gerund & Infinitive", NameRu: "Герундий и инфинитив", CefrLevel: "B1", SortOrder: 1},
	{ID: "PHRASAL_VERBS", CategoryID: "VERBPAT", Name: "Phrasal Verbs", NameRu: "Фразовые глаголы", CefrLevel: "B1", SortOrder: 2},

	{ID: "USED_TO", CategoryID: "OTHER", Name: "Used To & Would", NameRu: "Used to и would", CefrLevel: "B1", SortOrder: 1},
	{ID: "WISH_STRUCTURES", CategoryID: "OTHER", Name: "Wish & If Only", NameRu: "Конструкции с wish", CefrLevel: "B2", SortOrder: 2},
}

// SeedCategories upserts the grammar category list
func (s *GrammarSeeder) SeedCategories() error {
	for _, category := range grammarCategories {
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&category).Error
		if err != nil {
			return err
		}
	}
	log.Printf("Grammar categories: %d upserted", len(grammarCategories))
	return nil
}

// SeedTopics upserts the starter topic catalog
func (s *GrammarSeeder) SeedTopics() error {
	for _, topic := range starterTopics {
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&topic).Error
		if err != nil {
			return err
		}
	}
	log.Printf("Grammar topics: %d upserted", len(starterTopics))
	return nil
}
