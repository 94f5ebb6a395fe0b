package shared

const (
	// Main menu button labels. The Telegram reply keyboard sends these
	// back verbatim as message text.
	ButtonGrammar     = "📚 Grammar"
	ButtonPractice    = "✍️ Practice"
	ButtonFreeWriting = "📝 Free writing"
	ButtonStats       = "📊 My progress"

	ButtonBackToMenu = "⬅️ Back to menu"

	// In-session practice controls.
	ButtonSkip   = "⏭ Skip"
	ButtonFinish = "🏁 Finish"

	// Callback action prefixes. Payload formats:
	//   answer_{exerciseId}_{optionIndex}
	//   practice_grammar:{topicId}:{ruleName}
	//   theory:{topicId}
	//   theory_next:{topicId just shown}
	//   category:{categoryId}
	CallbackAnswerPrefix   = "answer_"
	CallbackPracticePrefix = "practice_grammar:"
	CallbackTheoryPrefix   = "theory:"
	CallbackTheoryNext     = "theory_next:"
	CallbackTheoryBrowse   = "theory_browse"
	CallbackCategoryPrefix = "category:"
	CallbackReviewPractice = "practice_review"
	CallbackPracticeSkip   = "practice_skip"
	CallbackPracticeFinish = "practice_finish"
	CallbackPracticeAgain  = "practice_again"
	CallbackBackToMenu     = "back_to_menu"

	// Redis key prefixes.
	KeyPrefixSession = "session:practice:"
	KeyPrefixLimits  = "limits:"

	// TopicID used for mixed review sessions, which draw exercises from
	// several weak topics at once.
	ReviewMixedTopic = "REVIEW_MIXED"
)
