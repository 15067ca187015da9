package session

import "cinemuse/models"

// messages holds the user-facing strings for one language.
type messages struct {
	Heading     string
	EmptyHint   string
	Loading     string
	EmptyPrompt string
	Failure     string
}

var catalog = map[models.Language]messages{
	models.LanguageEnglish: {
		Heading:     "Your Recommendations",
		EmptyHint:   "Your personalized movie night awaits.",
		Loading:     "Consulting the cinematic cosmos...",
		EmptyPrompt: "Please tell me how you are feeling or what you are thinking about.",
		Failure:     "Sorry, I had trouble finding recommendations. Please try again.",
	},
	models.LanguageChinese: {
		Heading:     "为你推荐",
		EmptyHint:   "你的专属电影之夜即将开启。",
		Loading:     "正在为你搜寻电影宇宙...",
		EmptyPrompt: "请告诉我你现在的心情或想法。",
		Failure:     "抱歉，暂时无法获取推荐，请稍后再试。",
	},
}

func messagesFor(lang models.Language) messages {
	if m, ok := catalog[lang]; ok {
		return m
	}
	return catalog[models.DefaultLanguage]
}
