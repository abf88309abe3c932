package feed

import (
	"fmt"
	"time"

	"github.com/llmpulse/radar/internal/model"
)

// Prompts are date-stamped to bias providers toward recent information and
// away from stale training-data answers.

func trendsPrompt(lang model.Language, query, category string, now time.Time) string {
	today := now.Format("2006-01-02")

	search := fmt.Sprintf("Major AI breakthroughs and tech news in last 48 hours (Today: %s): %s", today, query)
	if category != "" {
		search = fmt.Sprintf("Latest AI breakthroughs in %s after 2024-12-01: %s", category, query)
	}

	if lang == model.LangChinese {
		return fmt.Sprintf(`你是顶级AI情报专家。今天是 %s。
任务：搜索并总结【过去48小时内】发生的AI领域重大突破。
检索方向：%s
要求：
1. 禁止包含陈旧消息（如旧版本模型发布的旧闻）。
2. 聚焦最新开源模型、前沿推理模型、多模态生成、具身智能新突破。
3. 确保日期真实，不得虚构。
回复格式（严格）：
[TITLE]: 标题
[CATEGORY]: 从 (Large Language Models, Robotics & Embodied AI, Generative Media, AI Agents, Policy & Ethics, Compute & Hardware, Coding Efficiency) 选择
[SUMMARY]: 两句技术摘要（禁止空话）。
[SCORE]: 0-100得分
---END_ITEM---`, today, search)
	}

	return fmt.Sprintf(`Expert AI pulse. Today is %s.
Task: Summarize AI breakthroughs from the LAST 48 HOURS ONLY.
Search focus: %s
Focus on new open-weight releases, frontier reasoning models, generative media, and embodied AI.
NO STALE NEWS (e.g., old model release alerts).
Format:
[TITLE]: Headline
[CATEGORY]: One of (Large Language Models, Robotics & Embodied AI, Generative Media, AI Agents, Policy & Ethics, Compute & Hardware, Coding Efficiency)
[SUMMARY]: 2-sentence technical summary.
[SCORE]: 0-100
---END_ITEM---`, today, search)
}

func reposPrompt(lang model.Language, now time.Time) string {
	p := fmt.Sprintf("Return 3 trending AI GitHub repos for %s (name, url, desc, stars, lang) as RAW JSON ARRAY ONLY.", now.Format("2006-01-02"))
	if lang == model.LangChinese {
		p += " Desc in Chinese."
	}
	return p
}

func radarPrompt(lang model.Language, now time.Time) string {
	p := fmt.Sprintf("Current Date: %s. AI R&D intensity (0-100) for categories right now. Return RAW JSON ARRAY: [{subject: string, A: number}].", now.Format("2006-01-02"))
	if lang == model.LangChinese {
		p += " Subjects in Chinese."
	}
	return p
}

func analysisPrompt(lang model.Language, title string, now time.Time) string {
	language := "English"
	if lang == model.LangChinese {
		language = "Chinese"
	}
	return fmt.Sprintf(`Current Date: %s. Deep technical analysis for: %s.
Focus on WHY this is important TODAY.
Use sections (##), bullets, and Markdown tables.
Language: %s.`, now.Format("2006-01-02"), title, language)
}

func benchmarksPrompt(lang model.Language, now time.Time) string {
	p := fmt.Sprintf("Current Date: %s. Latest coding benchmark standings for frontier AI models (model, score, metric). Return RAW JSON ARRAY: [{model: string, score: number, metric: string}].", now.Format("2006-01-02"))
	if lang == model.LangChinese {
		p += " Metric names in Chinese."
	}
	return p
}
