package session

import (
	"math/rand/v2"

	"cinemuse/models"
)

// ChipCount is how many suggestion chips a session shows.
const ChipCount = 6

var promptPools = map[models.Language][]string{
	models.LanguageChinese: {
		"心情低落，想看点治愈的",
		"一部能让我大笑的喜剧",
		"推荐一部烧脑的科幻片",
		"适合全家一起看的动画电影",
		"一部经典的香港武侠片",
		"找一部评分很高的欧洲文艺片",
		"周末晚上适合情侣看的浪漫电影",
		"有没有关于美食的纪录片",
		"一部视觉效果震撼的动作大片",
		"推荐一部让人思考人生的电影",
		"最近有什么好看的悬疑片吗",
		"想看一部真实的传记电影",
	},
	models.LanguageEnglish: {
		"Feeling down, I need something comforting",
		"A comedy that will make me laugh out loud",
		"A mind-bending sci-fi movie",
		"An animated film the whole family can enjoy",
		"A classic Hong Kong martial arts film",
		"A highly rated European art-house film",
		"A romantic movie for a weekend date night",
		"A documentary about food",
		"An action blockbuster with stunning visual effects",
		"A movie that makes me think about life",
		"Any good mystery thrillers lately?",
		"A biopic based on a true story",
	},
}

// PromptPool returns the canned prompts for lang.
func PromptPool(lang models.Language) []string {
	if pool, ok := promptPools[lang]; ok {
		return pool
	}
	return promptPools[models.DefaultLanguage]
}

// SampleSuggestions draws n distinct prompts from pool without modifying it.
// If pool has fewer than n entries, all of them are returned in random order.
func SampleSuggestions(pool []string, n int, rng *rand.Rand) []string {
	if n > len(pool) {
		n = len(pool)
	}
	if n <= 0 {
		return []string{}
	}
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n:n]
}
